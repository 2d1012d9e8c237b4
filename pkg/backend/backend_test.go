package backend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotehq/rote/pkg/backend"
)

type fakeBackend struct {
	name     string
	versions []string
}

func (f *fakeBackend) Name() string { return f.name }
func (f *fakeBackend) Install(ctx *backend.InstallContext, version, destDir string) error {
	return nil
}
func (f *fakeBackend) Verify(destDir, version string) error { return nil }
func (f *fakeBackend) BinDir(destDir, version string) (string, error) {
	return destDir, nil
}
func (f *fakeBackend) ListVersions(ctx *backend.InstallContext) ([]string, error) {
	return f.versions, nil
}

func TestRegistryKeyJoinsBackendAndTool(t *testing.T) {
	assert.Equal(t, "core:java", backend.RegistryKey("core", "java"))
}

func TestRegistryGetUnknownBackend(t *testing.T) {
	r := backend.NewRegistry()
	_, err := r.Get("core:bogus")
	assert.Error(t, err)
}

func TestRegistryGetMemoizesInstance(t *testing.T) {
	r := backend.NewRegistry()
	calls := 0
	r.Register("core:java", func() backend.Backend {
		calls++
		return &fakeBackend{name: "java"}
	})

	first, err := r.Get("core:java")
	require.NoError(t, err)
	second, err := r.Get("core:java")
	require.NoError(t, err)

	assert.Same(t, first, second, "Get must return the same memoized instance across calls")
	assert.Equal(t, 1, calls, "the factory must only run once")
}

func TestRegistryNamesSorted(t *testing.T) {
	r := backend.NewRegistry()
	r.Register("core:node", func() backend.Backend { return &fakeBackend{name: "node"} })
	r.Register("core:go", func() backend.Backend { return &fakeBackend{name: "go"} })

	assert.Equal(t, []string{"core:go", "core:node"}, r.Names())
}

func TestNewDefaultRegistryRegistersCoreBackends(t *testing.T) {
	r := backend.NewDefaultRegistry()
	for _, key := range []string{"core:java", "core:maven", "core:mvnd", "core:node", "core:go", "core:python", "core:rust"} {
		_, err := r.Get(key)
		assert.NoError(t, err, "expected %s to be registered", key)
	}
}
