// Package projecttype provides marker-based project type detection. It
// scans upward from a directory for well-known marker files (go.mod,
// Cargo.toml, package.json, ...) so `cmdbox add` can fill in the
// project_type field when the flag is omitted.
package projecttype

import (
	"os"
	"path/filepath"
)

// DefaultMaxScanDepth limits how many parent directories are scanned.
const DefaultMaxScanDepth = 10

// Marker defines a filesystem marker that indicates a project type.
type Marker struct {
	// Name is the filename or directory name to look for.
	Name string

	// ProjectType is the type string returned when this marker is found.
	ProjectType string

	// IsDir indicates this marker is a directory, not a file.
	IsDir bool
}

// builtinMarkers lists markers in priority order: within one directory
// the first matching marker wins, so go.mod beats a sibling Makefile.
var builtinMarkers = []Marker{
	{Name: "go.mod", ProjectType: "go"},
	{Name: "Cargo.toml", ProjectType: "rust"},
	{Name: "package.json", ProjectType: "node"},
	{Name: "pyproject.toml", ProjectType: "python"},
	{Name: "setup.py", ProjectType: "python"},
	{Name: "Gemfile", ProjectType: "ruby"},
	{Name: "pom.xml", ProjectType: "java"},
	{Name: "build.gradle", ProjectType: "java"},
	{Name: "CMakeLists.txt", ProjectType: "cpp"},
	{Name: ".terraform", ProjectType: "terraform", IsDir: true},
	{Name: "Dockerfile", ProjectType: "docker"},
	{Name: "Makefile", ProjectType: "make"},
}

// Detect scans upward from dir and returns the nearest project type, or
// "" when no marker is found within DefaultMaxScanDepth levels.
func Detect(dir string) string {
	if dir == "" {
		return ""
	}

	current := filepath.Clean(dir)
	for depth := 0; depth < DefaultMaxScanDepth; depth++ {
		for _, marker := range builtinMarkers {
			if markerExists(current, marker) {
				return marker.ProjectType
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			break // filesystem root
		}
		current = parent
	}

	return ""
}

// DetectCwd detects the project type of the current working directory.
func DetectCwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return Detect(cwd)
}

func markerExists(dir string, marker Marker) bool {
	info, err := os.Stat(filepath.Join(dir, marker.Name))
	if err != nil {
		return false
	}
	return info.IsDir() == marker.IsDir
}
