package runtime_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotehq/rote/pkg/backend"
	"github.com/rotehq/rote/pkg/layerconfig"
	"github.com/rotehq/rote/pkg/runtime"
)

type infoBackend struct{ binaryName string }

func (b *infoBackend) Name() string { return "maven" }
func (b *infoBackend) Install(ctx *backend.InstallContext, version, destDir string) error {
	return nil
}
func (b *infoBackend) Verify(destDir, version string) error { return nil }
func (b *infoBackend) BinDir(destDir, version string) (string, error) {
	return destDir, nil
}
func (b *infoBackend) ListVersions(ctx *backend.InstallContext) ([]string, error) { return nil, nil }
func (b *infoBackend) ToolInfo() backend.Info {
	return backend.Info{BinaryName: b.binaryName}
}

func TestBinaryNameForUsesToolInfoWhenPresent(t *testing.T) {
	reg := backend.NewRegistry()
	reg.Register("core:maven", func() backend.Backend { return &infoBackend{binaryName: "mvn"} })

	assert.Equal(t, "mvn", runtime.BinaryNameFor(reg, "core", "maven"))
}

type plainBackend struct{}

func (b *plainBackend) Name() string { return "node" }
func (b *plainBackend) Install(ctx *backend.InstallContext, version, destDir string) error {
	return nil
}
func (b *plainBackend) Verify(destDir, version string) error { return nil }
func (b *plainBackend) BinDir(destDir, version string) (string, error) {
	return destDir, nil
}
func (b *plainBackend) ListVersions(ctx *backend.InstallContext) ([]string, error) { return nil, nil }

func TestBinaryNameForFallsBackToToolName(t *testing.T) {
	reg := backend.NewRegistry()
	reg.Register("core:node", func() backend.Backend { return &plainBackend{} })

	assert.Equal(t, "node", runtime.BinaryNameFor(reg, "core", "node"))
}

func TestBinaryNameForUnknownBackendFallsBackToToolName(t *testing.T) {
	reg := backend.NewRegistry()
	assert.Equal(t, "bogus", runtime.BinaryNameFor(reg, "core", "bogus"))
}

func TestFindToolByBinaryMatchesOnResolvedBinaryName(t *testing.T) {
	reg := backend.NewRegistry()
	reg.Register("core:maven", func() backend.Backend { return &infoBackend{binaryName: "mvn"} })

	env := &runtime.Env{
		Registry: reg,
		Config: &layerconfig.EffectiveConfig{
			Tools: map[string]layerconfig.ToolSpec{
				"core:maven": {Backend: "core", Name: "maven", Version: "3.9"},
			},
		},
	}

	key, ok := runtime.FindToolByBinary(env, "mvn")
	assert.True(t, ok)
	assert.Equal(t, "core:maven", key)

	_, ok = runtime.FindToolByBinary(env, "nonexistent")
	assert.False(t, ok)
}

func TestDataDirHonorsOverride(t *testing.T) {
	require.NoError(t, os.Setenv("ROTE_DATA_DIR", "/custom/data"))
	defer os.Unsetenv("ROTE_DATA_DIR")
	assert.Equal(t, "/custom/data", runtime.DataDir())
}
