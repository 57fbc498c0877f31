package main

import (
	"log"
)

// modeFlags are consumed by loadConfig and never name a file.
var modeFlags = map[string]bool{
	"--serve":   true,
	"--mcp":     true,
	"--version": true,
}

// fileArgument returns the first argument after the executable that is not a
// mode flag, or "" when there is none. File names starting with "-" are kept.
func fileArgument(args []string) string {
	if len(args) < 2 {
		return ""
	}
	for _, arg := range args[1:] {
		if modeFlags[arg] {
			continue
		}
		return arg
	}
	return ""
}

// HandleSecondInstance routes the arguments of a launch that was redirected
// into this process. cwd is the working directory of that launch.
func (s *Shell) HandleSecondInstance(args []string, cwd string) {
	log.Printf("[Instance] Second instance launched with %d args", len(args))
	for i, arg := range args {
		log.Printf("[Instance] Arg[%d]: %s", i, arg)
	}

	raw := fileArgument(args)
	if raw == "" {
		// A bare relaunch asks for a fresh window. A single-window host can
		// only bring its window forward.
		if s.host.MultiWindow() {
			log.Printf("[Instance] No file argument, creating new window")
			s.createWindow()
			return
		}
		s.Reveal()
		return
	}
	s.route(s.resolver.ResolveFrom(raw, cwd))
}

// OpenFile routes a single path, as delivered by OS file associations or
// automation tools, and returns the decision taken.
func (s *Shell) OpenFile(raw string) Decision {
	return s.route(s.resolver.Resolve(raw))
}

// Reveal brings an existing window forward, or creates one when none exists.
func (s *Shell) Reveal() {
	w, ok := SelectWindow(s.host.Windows())
	if !ok {
		log.Printf("[Instance] No windows exist, creating new window")
		s.createWindow()
		return
	}
	log.Printf("[Instance] Focusing existing window %s", w.Label)
	s.bestEffort("show", w.Label, s.host.Show(w.Label))
	s.bestEffort("focus", w.Label, s.host.Focus(w.Label))
}

func (s *Shell) route(path string) Decision {
	d := Decide(s.host.Windows(), path)
	if d.Kind == Create {
		log.Printf("[Instance] No windows exist, creating new window with %s", path)
	}
	s.apply(d)
	return d
}
