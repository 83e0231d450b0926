package postgres

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLog_Compression(t *testing.T) {
	a, err := NewAuditLog(nil)
	require.NoError(t, err)
	a.WithCompressThreshold(64)

	small := AuditEntry{Changes: json.RawMessage(`{"total":"10"}`)}
	a.compress(&small)
	assert.Equal(t, CompressionNone, small.CompressionAlgo)
	assert.Nil(t, small.ChangesCompressed)

	payload := json.RawMessage(`{"lines":"` + string(bytes.Repeat([]byte("x"), 512)) + `"}`)
	large := AuditEntry{Changes: payload}
	a.compress(&large)
	assert.Equal(t, CompressionZstd, large.CompressionAlgo)
	assert.Nil(t, large.Changes)
	assert.Less(t, len(large.ChangesCompressed), len(payload))

	require.NoError(t, a.decompress(&large))
	assert.JSONEq(t, string(payload), string(large.Changes))
	assert.Nil(t, large.ChangesCompressed)
}
