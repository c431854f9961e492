package xcode

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Kind distinguishes the two container types xcodebuild accepts.
type Kind int

const (
	KindWorkspace Kind = iota
	KindProject
)

const (
	workspaceExt = ".xcworkspace"
	projectExt   = ".xcodeproj"
)

// Project holds information about a located Xcode workspace or project.
type Project struct {
	Root string // Absolute path of the folder the search started from
	Path string // Container path relative to Root, e.g. "App.xcworkspace"
	Kind Kind
}

// Flag returns the xcodebuild flag that selects this container kind.
func (p *Project) Flag() string {
	if p.Kind == KindWorkspace {
		return "-workspace"
	}
	return "-project"
}

// Name returns the container directory name.
func (p *Project) Name() string {
	return filepath.Base(p.Path)
}

// Args returns the flag/path pair that every xcodebuild invocation starts with.
func (p *Project) Args() []string {
	return []string{p.Flag(), p.Path}
}

// DetectProject searches root depth-first for the first .xcworkspace or
// .xcodeproj directory. Subdirectories of each level are visited in reverse
// lexicographic order, and all of them are checked before descending, so a
// workspace wins over a same-named project. Returns nil when nothing is found.
func DetectProject(root string) *Project {
	dir, err := filepath.Abs(root)
	if err != nil {
		return nil
	}

	rel, ok := findContainer(dir, "")
	if !ok {
		return nil
	}

	p := &Project{Root: dir, Path: rel, Kind: KindProject}
	if strings.HasSuffix(rel, workspaceExt) {
		p.Kind = KindWorkspace
	}
	return p
}

func findContainer(dir, rel string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}

	var subdirs []string
	for _, e := range entries {
		if e.IsDir() {
			subdirs = append(subdirs, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(subdirs)))

	for _, name := range subdirs {
		if isContainer(name) {
			return filepath.Join(rel, name), true
		}
	}

	for _, name := range subdirs {
		if found, ok := findContainer(filepath.Join(dir, name), filepath.Join(rel, name)); ok {
			return found, true
		}
	}
	return "", false
}

func isContainer(name string) bool {
	return strings.HasSuffix(name, workspaceExt) || strings.HasSuffix(name, projectExt)
}
