package main

import (
	"log"
)

// Shell routes file-open requests between launches and windows. It owns the
// pending slot; hosts call into it from their own goroutines.
type Shell struct {
	host     WindowHost
	pending  *PendingOpen
	resolver *PathResolver
}

// NewShell creates a Shell driving host.
func NewShell(host WindowHost, resolver *PathResolver) *Shell {
	return &Shell{
		host:     host,
		pending:  &PendingOpen{},
		resolver: resolver,
	}
}

// Pending exposes the pending slot.
func (s *Shell) Pending() *PendingOpen {
	return s.pending
}

// Startup handles the launch arguments of this process and constructs the
// initial window.
func (s *Shell) Startup(args []string) {
	logArgs("Arg", args)

	if raw := fileArgument(args); raw != "" {
		path := s.resolver.Resolve(raw)
		log.Printf("[Shell] File argument %q resolved to %s", raw, path)

		d := Decide(s.host.Windows(), path)
		if d.Kind == Deliver {
			s.deliver(d)
		} else {
			log.Printf("[Shell] No window yet, holding %s for the first one", path)
			s.pending.Set(path)
		}
	} else {
		log.Printf("[Shell] No file argument provided")
	}

	if err := s.host.CreateWindow(); err != nil {
		log.Printf("[Shell] Failed to create initial window: %v", err)
	}
}

// ShowMainWindow reveals and focuses the window, then hands it the pending
// path if there is one.
func (s *Shell) ShowMainWindow(label string) {
	s.bestEffort("show", label, s.host.Show(label))
	s.bestEffort("focus", label, s.host.Focus(label))

	if path, ok := s.pending.Take(); ok {
		log.Printf("[Shell] Emitting %s to %s: %s", EventFileOpen, label, path)
		s.bestEffort("emit", label, s.host.Emit(FileOpen(path, label)))
	}
}

// GetCliArgs reports whether a file-open is waiting for a window.
func (s *Shell) GetCliArgs() bool {
	return s.pending.HasValue()
}

// apply carries out a routing decision against the host.
func (s *Shell) apply(d Decision) {
	switch d.Kind {
	case Deliver:
		s.deliver(d)
	case Create:
		s.pending.Set(d.Pending)
		s.createWindow()
	}
}

func (s *Shell) deliver(d Decision) {
	label := d.Window.Label
	log.Printf("[Shell] Emitting %s to existing window %s: %s", EventFileOpen, label, d.Notification.Path)
	s.bestEffort("emit", label, s.host.Emit(d.Notification))
	s.bestEffort("focus", label, s.host.Focus(label))
}

func (s *Shell) createWindow() {
	if err := s.host.CreateWindow(); err != nil {
		log.Printf("[Shell] Failed to create window: %v", err)
	}
}

// bestEffort records the outcome of a window operation. A window that closed
// in the meantime is not actionable and is ignored.
func (s *Shell) bestEffort(op, label string, err error) Outcome {
	o := OutcomeOf(err)
	if o == Failed {
		log.Printf("[Shell] %s on %s failed: %v", op, label, err)
	}
	return o
}

func logArgs(prefix string, args []string) {
	log.Printf("[Shell] Total args: %d", len(args))
	for i, arg := range args {
		log.Printf("[Shell] %s[%d]: %s", prefix, i, arg)
	}
}
