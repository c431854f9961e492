package xcode

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}
}

func TestDetectProject_PrefersWorkspaceAtSameLevel(t *testing.T) {
	tmp := t.TempDir()
	mkdirs(t, tmp, "A.xcodeproj", "Z.xcworkspace")

	p := DetectProject(tmp)
	require.NotNil(t, p)
	assert.Equal(t, "Z.xcworkspace", p.Path)
	assert.Equal(t, KindWorkspace, p.Kind)
	assert.Equal(t, "-workspace", p.Flag())
}

func TestDetectProject_ReverseOrderAmongProjects(t *testing.T) {
	tmp := t.TempDir()
	mkdirs(t, tmp, "Alpha.xcodeproj", "Beta.xcodeproj")

	p := DetectProject(tmp)
	require.NotNil(t, p)
	assert.Equal(t, "Beta.xcodeproj", p.Path)
	assert.Equal(t, KindProject, p.Kind)
	assert.Equal(t, []string{"-project", "Beta.xcodeproj"}, p.Args())
}

func TestDetectProject_ChecksLevelBeforeDescending(t *testing.T) {
	// "zz" sorts first, but the container one level up must still win.
	tmp := t.TempDir()
	mkdirs(t, tmp, "App.xcodeproj", filepath.Join("zz", "Nested.xcworkspace"))

	p := DetectProject(tmp)
	require.NotNil(t, p)
	assert.Equal(t, "App.xcodeproj", p.Path)
}

func TestDetectProject_Nested(t *testing.T) {
	tmp := t.TempDir()
	mkdirs(t, tmp,
		filepath.Join("apps", "ios", "App.xcodeproj"),
		filepath.Join("docs", "images"),
	)

	p := DetectProject(tmp)
	require.NotNil(t, p)
	assert.Equal(t, filepath.Join("apps", "ios", "App.xcodeproj"), p.Path)
	assert.Equal(t, "App.xcodeproj", p.Name())
	assert.Equal(t, tmp, p.Root)
}

func TestDetectProject_DepthFirstInReverseOrder(t *testing.T) {
	tmp := t.TempDir()
	mkdirs(t, tmp,
		filepath.Join("a", "First.xcodeproj"),
		filepath.Join("b", "deep", "Second.xcodeproj"),
	)

	p := DetectProject(tmp)
	require.NotNil(t, p)
	assert.Equal(t, filepath.Join("b", "deep", "Second.xcodeproj"), p.Path)
}

func TestDetectProject_IgnoresFiles(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "Fake.xcodeproj"), []byte("x"), 0o644))

	assert.Nil(t, DetectProject(tmp))
}

func TestDetectProject_NotFound(t *testing.T) {
	tmp := t.TempDir()
	mkdirs(t, tmp, "Sources", "Tests")

	assert.Nil(t, DetectProject(tmp))
}

func TestDetectProject_MissingRoot(t *testing.T) {
	assert.Nil(t, DetectProject(filepath.Join(t.TempDir(), "missing")))
}
