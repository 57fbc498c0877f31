package main

import (
	"os"
	"path/filepath"
)

// defaultBuildDir is the directory a development build runs from. A relative
// file argument given there refers to the project root, one level up.
const defaultBuildDir = "build"

// PathResolver turns file arguments into absolute paths. It never fails: when
// the working directory is unknown the raw argument is returned as is.
type PathResolver struct {
	BuildDir string
	Getwd    func() (string, error)
}

// NewPathResolver returns a resolver that uses the process working directory.
func NewPathResolver(buildDir string) *PathResolver {
	if buildDir == "" {
		buildDir = defaultBuildDir
	}
	return &PathResolver{BuildDir: buildDir, Getwd: os.Getwd}
}

// Resolve resolves raw against the process working directory.
func (r *PathResolver) Resolve(raw string) string {
	if filepath.IsAbs(raw) {
		return raw
	}
	cwd, err := r.Getwd()
	if err != nil || cwd == "" {
		return raw
	}
	return r.join(cwd, raw)
}

// ResolveFrom resolves raw against cwd, the working directory of the launch
// that supplied it. An empty cwd means the process working directory.
func (r *PathResolver) ResolveFrom(raw, cwd string) string {
	if cwd == "" {
		return r.Resolve(raw)
	}
	if filepath.IsAbs(raw) {
		return raw
	}
	return r.join(cwd, raw)
}

func (r *PathResolver) join(cwd, raw string) string {
	base := filepath.Clean(cwd)
	if r.BuildDir != "" && filepath.Base(base) == r.BuildDir {
		base = filepath.Dir(base)
	}
	return filepath.Join(base, raw)
}
