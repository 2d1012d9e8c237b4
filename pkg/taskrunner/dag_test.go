package taskrunner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotehq/rote/pkg/layerconfig"
	"github.com/rotehq/rote/pkg/taskrunner"
)

func cfgWithTasks(tasks map[string]layerconfig.TaskSpec) *layerconfig.EffectiveConfig {
	return &layerconfig.EffectiveConfig{Tasks: tasks}
}

func TestBuildResolvesDependsTransitively(t *testing.T) {
	cfg := cfgWithTasks(map[string]layerconfig.TaskSpec{
		"build": {Run: "mvn package", Depends: []string{"clean"}},
		"clean": {Run: "mvn clean"},
	})
	g, err := taskrunner.Build(cfg, []string{"build"})
	require.NoError(t, err)

	ready := g.Ready(nil)
	assert.Equal(t, []string{"clean"}, ready, "only clean has no unmet dependency yet")

	ready = g.Ready(map[string]bool{"clean": true})
	assert.Equal(t, []string{"build"}, ready)
}

func TestBuildDependsPostRunsAfter(t *testing.T) {
	cfg := cfgWithTasks(map[string]layerconfig.TaskSpec{
		"build":   {Run: "mvn package", DependsPost: []string{"notify"}},
		"notify":  {Run: "echo done"},
	})
	g, err := taskrunner.Build(cfg, []string{"build"})
	require.NoError(t, err)

	assert.Equal(t, []string{"build"}, g.Ready(nil), "notify depends on build via depends_post, so only build is ready first")
	assert.Equal(t, []string{"notify"}, g.Ready(map[string]bool{"build": true}))
}

func TestBuildDetectsCycle(t *testing.T) {
	cfg := cfgWithTasks(map[string]layerconfig.TaskSpec{
		"a": {Run: "echo a", Depends: []string{"b"}},
		"b": {Run: "echo b", Depends: []string{"a"}},
	})
	_, err := taskrunner.Build(cfg, []string{"a"})
	assert.Error(t, err)
}

func TestBuildUnknownTaskErrors(t *testing.T) {
	cfg := cfgWithTasks(map[string]layerconfig.TaskSpec{})
	_, err := taskrunner.Build(cfg, []string{"missing"})
	assert.Error(t, err)
}

func TestIsLinearTrueForChain(t *testing.T) {
	cfg := cfgWithTasks(map[string]layerconfig.TaskSpec{
		"c": {Run: "echo c", Depends: []string{"b"}},
		"b": {Run: "echo b", Depends: []string{"a"}},
		"a": {Run: "echo a"},
	})
	g, err := taskrunner.Build(cfg, []string{"c"})
	require.NoError(t, err)
	assert.True(t, g.IsLinear())
}

func TestIsLinearFalseForFanOut(t *testing.T) {
	cfg := cfgWithTasks(map[string]layerconfig.TaskSpec{
		"build": {Run: "echo build", Depends: []string{"lint", "test"}},
		"lint":  {Run: "echo lint"},
		"test":  {Run: "echo test"},
	})
	g, err := taskrunner.Build(cfg, []string{"build"})
	require.NoError(t, err)
	assert.False(t, g.IsLinear())
}

func TestIsLinearTrueForRedundantDependsAlreadyImpliedTransitively(t *testing.T) {
	cfg := cfgWithTasks(map[string]layerconfig.TaskSpec{
		"all": {Run: "echo all", Depends: []string{"a", "b", "c"}},
		"a":   {Run: "echo a"},
		"b":   {Run: "echo b", Depends: []string{"a"}},
		"c":   {Run: "echo c", Depends: []string{"b"}},
	})
	g, err := taskrunner.Build(cfg, []string{"all"})
	require.NoError(t, err)
	assert.True(t, g.IsLinear(), "all's direct depends on a and b are already implied by its depends on c, so only one task is ever ready at a time")
}

func TestGraphStringRendersDeps(t *testing.T) {
	cfg := cfgWithTasks(map[string]layerconfig.TaskSpec{
		"build": {Run: "echo build", Depends: []string{"lint", "test"}},
		"lint":  {Run: "echo lint"},
		"test":  {Run: "echo test"},
	})
	g, err := taskrunner.Build(cfg, []string{"build"})
	require.NoError(t, err)
	assert.Contains(t, g.String(), "build <- lint, test")
}
