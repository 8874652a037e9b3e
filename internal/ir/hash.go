package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed fingerprints.
// Version suffix enables future algorithm migration.
const (
	DomainUnit     = "streamtrace/unit/v1"
	DomainPipeline = "streamtrace/pipeline/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// UnitFingerprint computes the content address of a generated code unit
// snapshot. Generation is deterministic, so identical calls with identical
// call numbers always produce identical fingerprints.
func UnitFingerprint(snapshot map[string]any) (string, error) {
	canonical, err := MarshalCanonical(snapshot)
	if err != nil {
		return "", fmt.Errorf("UnitFingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainUnit, canonical), nil
}

// PipelineFingerprint computes the content address of a pipeline description.
func PipelineFingerprint(p Pipeline) (string, error) {
	calls := make([]any, len(p.Calls))
	for i, c := range p.Calls {
		calls[i] = c.Snapshot()
	}
	canonical, err := MarshalCanonical(map[string]any{
		"name":           p.Name,
		"calls":          calls,
		"result":         p.Result.String(),
		"result_element": p.ResultElement.String(),
	})
	if err != nil {
		return "", fmt.Errorf("PipelineFingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainPipeline, canonical), nil
}
