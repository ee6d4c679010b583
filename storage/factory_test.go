package storage

import (
	"testing"

	"github.com/greencampus/facility-reports/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Local(t *testing.T) {
	p, err := New(&config.Config{StorageType: "local", StorageLocalPath: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "local", p.Name())
}

func TestNew_Unsupported(t *testing.T) {
	_, err := New(&config.Config{StorageType: "ftp"})
	assert.Error(t, err)
}

func TestNew_MinioNeedsEndpoint(t *testing.T) {
	_, err := New(&config.Config{StorageType: "minio"})
	assert.Error(t, err)
}
