package emit

// ListVariable describes a list the generated code will populate at run
// time. It holds no data itself.
type ListVariable struct {
	Variable
	Elem Type
}

// NewList describes a list of elem named name.
func NewList(elem Type, name string) ListVariable {
	return ListVariable{Variable: Variable{Name: name, Type: ListOf(elem)}, Elem: elem}
}

// Add appends e.
func (l ListVariable) Add(e Expression) Call { return l.Call("add", e) }

// Get reads the element at index.
func (l ListVariable) Get(index Expression) Call { return l.Call("get", index) }

// Set replaces the element at index.
func (l ListVariable) Set(index, value Expression) Call { return l.Call("set", index, value) }

// Size returns the element count.
func (l ListVariable) Size() Call { return l.Call("size") }

// Contains tests membership by equality.
func (l ListVariable) Contains(e Expression) Call { return l.Call("contains", e) }

// DefaultDeclaration declares the list initialized empty.
func (l ListVariable) DefaultDeclaration() Declare {
	return Declare{Var: l.Variable, Init: Construct{Type: "java.util.ArrayList<>"}}
}

// ConvertToArray returns statements declaring name as an array holding the
// list contents in order. An empty list yields an empty array.
func (l ListVariable) ConvertToArray(name string) []Statement {
	result := Variable{Name: name, Type: ArrayOf(l.Elem)}
	b := NewBlock()
	b.Declare(result, NewSizedArray{Elem: l.Elem, Size: l.Size()}, false)
	b.CountedLoop(name+"Index", l.Size(), func(body *Block, i Variable) {
		body.Assign(Index{Array: result, Index: i}, l.Get(i))
	})
	return b.Statements()
}

// MapVariable describes a map the generated code will populate at run time.
// Linked maps iterate in insertion order.
type MapVariable struct {
	Variable
	Key    Type
	Value  Type
	Linked bool
}

// NewMap describes a hash map named name.
func NewMap(key, value Type, name string) MapVariable {
	return MapVariable{Variable: Variable{Name: name, Type: MapOf(key, value)}, Key: key, Value: value}
}

// NewLinkedMap describes an insertion-ordered map named name.
func NewLinkedMap(key, value Type, name string) MapVariable {
	m := NewMap(key, value, name)
	m.Linked = true
	return m
}

// Get reads the value for key.
func (m MapVariable) Get(key Expression) Call { return m.Call("get", key) }

// Set stores value under key.
func (m MapVariable) Set(key, value Expression) Call { return m.Call("put", key, value) }

// Keys returns the key set.
func (m MapVariable) Keys() Call { return m.Call("keySet") }

// Contains tests whether key is present.
func (m MapVariable) Contains(key Expression) Call { return m.Call("containsKey", key) }

// Size returns the entry count.
func (m MapVariable) Size() Call { return m.Call("size") }

// ComputeIfAbsent returns the value for key, storing supplier(key) first if
// the key is absent.
func (m MapVariable) ComputeIfAbsent(key Expression, supplier Lambda) Call {
	return m.Call("computeIfAbsent", key, supplier)
}

// DefaultDeclaration declares the map initialized empty.
func (m MapVariable) DefaultDeclaration() Declare {
	impl := "java.util.HashMap<>"
	if m.Linked {
		impl = "java.util.LinkedHashMap<>"
	}
	return Declare{Var: m.Variable, Init: Construct{Type: impl}}
}

// ConvertToArray returns statements declaring name as
// new Object[] {keys, values}, where keys and values are arrays in map
// iteration order. An empty map yields two empty arrays.
func (m MapVariable) ConvertToArray(name string) []Statement {
	result := Variable{Name: name, Type: ArrayOf(ObjectType)}
	b := NewBlock()
	b.Declare(result, nil, false)
	b.Scope(func(s *Block) {
		keys := s.Declare(Variable{Name: name + "Keys", Type: ArrayOf(m.Key)},
			NewSizedArray{Elem: m.Key, Size: m.Size()}, false)
		values := s.Declare(Variable{Name: name + "Values", Type: ArrayOf(m.Value)},
			NewSizedArray{Elem: m.Value, Size: m.Size()}, false)
		index := s.Declare(Variable{Name: name + "Index", Type: IntType}, Int(0), true)
		s.ForEach(Variable{Name: name + "Key", Type: m.Key}, m.Keys(), func(body *Block, key Variable) {
			body.Assign(Index{Array: keys, Index: index}, key)
			body.Assign(Index{Array: values, Index: index}, m.Get(key))
			body.Assign(index, Plus(index, Int(1)))
		})
		s.Assign(result, NewArray{Elem: ObjectType, Items: []Expression{keys, values}})
	})
	return b.Statements()
}
