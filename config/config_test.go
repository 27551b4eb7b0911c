package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_PopulatesDefaults(t *testing.T) {
	require.NoError(t, Init())

	assert.Equal(t, "0.0.0.0", App.Server.Listen)
	assert.Equal(t, 8080, App.Server.Port)
	assert.Equal(t, "/api/v0", App.Server.VersionPrefix)
	assert.Equal(t, 30*time.Second, App.Server.RequestTimeout)
	assert.Equal(t, 1000000, App.Limits.MaxRowsOutput)
	assert.Equal(t, 1, App.Auth.ConfigurablesAccessLevel)
}

func TestEngine_SQLTimeout(t *testing.T) {
	e := Engine{SQLTimeoutSeconds: 45}
	assert.Equal(t, 45*time.Second, e.SQLTimeout())
}

func TestTempdir_CreatesDirectory(t *testing.T) {
	dir, err := Tempdir()
	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
