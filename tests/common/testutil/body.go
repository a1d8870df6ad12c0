//go:build unit || e2e

package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// BodyEdit changes one field of a request body before it is sent.
type BodyEdit func(map[string]any)

// Without drops key so binding sees the field as absent.
func Without(key string) BodyEdit {
	return func(m map[string]any) { delete(m, key) }
}

// With overrides key, e.g. to send a malformed timestamp.
func With(key string, value any) BodyEdit {
	return func(m map[string]any) { m[key] = value }
}

// RequestBody round-trips a request DTO through JSON and applies edits to the
// resulting map, for exercising binding failures.
func RequestBody(t *testing.T, dto any, edits ...BodyEdit) map[string]any {
	t.Helper()

	raw, err := json.Marshal(dto)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	for _, edit := range edits {
		edit(m)
	}
	return m
}
