package adapter_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/niksmo/storefront/internal/adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTLSConfigMissingCA(t *testing.T) {
	dir := t.TempDir()
	_, err := adapter.NewTLSConfig(
		filepath.Join(dir, "ca.pem"),
		filepath.Join(dir, "client.pem"),
		filepath.Join(dir, "client.key"),
	)
	assert.Error(t, err)
}

func TestNewTLSConfigInvalidCA(t *testing.T) {
	dir := t.TempDir()
	ca := filepath.Join(dir, "ca.pem")
	require.NoError(t, os.WriteFile(ca, []byte("not a certificate"), 0o600))

	_, err := adapter.NewTLSConfig(
		ca, filepath.Join(dir, "client.pem"), filepath.Join(dir, "client.key"),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse CA certificate")
}
