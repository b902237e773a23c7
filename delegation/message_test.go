package delegation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_Valid(t *testing.T) {
	m, err := Encode("chief_market_analyst", "analyze trends", "category=review")
	require.NoError(t, err)
	assert.Equal(t, "chief_market_analyst", m.Coworker)
	assert.Equal(t, "analyze trends", m.Task)
	assert.Equal(t, "category=review", m.Context)
}

func TestEncode_InvalidRole(t *testing.T) {
	tests := []struct {
		name     string
		coworker string
	}{
		{"empty", ""},
		{"leading digit", "1analyst"},
		{"spaces", "chief market analyst"},
		{"punctuation", "analyst!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.coworker, "task", "ctx")
			var protoErr *ProtocolError
			require.ErrorAs(t, err, &protoErr)
			assert.Equal(t, InvalidRole, protoErr.Code)
		})
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	m, err := Encode("persona_manager", "summarize persona", "account=a1")
	require.NoError(t, err)

	raw, err := m.Marshal()
	require.NoError(t, err)

	decoded, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, m, decoded)
}

func TestDecode_ExtraKeyRejected(t *testing.T) {
	// Planner output carrying tool-call metadata must be rejected, not stripped.
	raw := []byte(`{"coworker":"chief_market_analyst","task":"t","context":"c","name":"delegate"}`)

	_, err := Decode(raw)
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, SchemaViolation, protoErr.Code)
	assert.Contains(t, protoErr.Error(), "name")
}

func TestDecode_MissingKeyRejected(t *testing.T) {
	raw := []byte(`{"coworker":"chief_market_analyst","task":"t"}`)

	_, err := Decode(raw)
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, SchemaViolation, protoErr.Code)
	assert.Contains(t, protoErr.Error(), "context")
}

func TestDecode_NonStringValueRejected(t *testing.T) {
	raw := []byte(`{"coworker":"analyst","task":42,"context":"c"}`)

	_, err := Decode(raw)
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, SchemaViolation, protoErr.Code)
}

func TestDecode_NotAnObject(t *testing.T) {
	_, err := Decode([]byte(`["coworker","task","context"]`))
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, SchemaViolation, protoErr.Code)
}

func TestDecodeMap(t *testing.T) {
	m, err := DecodeMap(map[string]any{
		"coworker": "brand_strategist",
		"task":     "compose document",
		"context":  "product=mug",
	})
	require.NoError(t, err)
	assert.Equal(t, "brand_strategist", m.Coworker)

	_, err = DecodeMap(map[string]any{
		"coworker":    "brand_strategist",
		"task":        "t",
		"context":     "c",
		"description": "extra",
	})
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, SchemaViolation, protoErr.Code)

	_, err = DecodeMap(nil)
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, SchemaViolation, protoErr.Code)
}

func TestDecode_EmptyCoworker(t *testing.T) {
	raw := []byte(`{"coworker":"","task":"t","context":"c"}`)

	_, err := Decode(raw)
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, InvalidRole, protoErr.Code)
}
