package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/streamtrace/internal/queryir"
	"github.com/roach88/streamtrace/internal/querysql"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func compileForTest(q queryir.Query) (string, []any, error) {
	return querysql.NewSQLCompiler().Compile(q)
}
