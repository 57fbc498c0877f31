package main

import "errors"

// EventFileOpen is emitted to the front-end with an absolute path payload.
const EventFileOpen = "file-open"

// ErrWindowClosed is returned by hosts for operations on a window that is
// gone. Callers treat it as an expected outcome.
var ErrWindowClosed = errors.New("window closed")

// WindowInfo is a point-in-time snapshot of a live window.
type WindowInfo struct {
	Label   string `json:"label"`
	Focused bool   `json:"focused"`
	Visible bool   `json:"visible"`
}

// Notification is an event addressed to one window, or to all of them when
// Target is empty.
type Notification struct {
	Event  string `json:"event"`
	Path   string `json:"path"`
	Target string `json:"target,omitempty"`
}

// FileOpen builds a file-open notification for target.
func FileOpen(path, target string) Notification {
	return Notification{Event: EventFileOpen, Path: path, Target: target}
}

// WindowHost is the windowing system the shell drives. Windows returns a
// fresh snapshot on every call, in a stable iteration order. MultiWindow
// reports whether CreateWindow adds a window next to the existing ones.
type WindowHost interface {
	Windows() []WindowInfo
	MultiWindow() bool
	Emit(n Notification) error
	Show(label string) error
	Focus(label string) error
	CreateWindow() error
}

// SelectWindow picks the window that should receive a file-open: the first
// focused one, else the first visible one, else the first one.
func SelectWindow(windows []WindowInfo) (WindowInfo, bool) {
	for _, w := range windows {
		if w.Focused {
			return w, true
		}
	}
	for _, w := range windows {
		if w.Visible {
			return w, true
		}
	}
	if len(windows) > 0 {
		return windows[0], true
	}
	return WindowInfo{}, false
}

// DecisionKind says what to do with a file-open request.
type DecisionKind int

const (
	// Deliver sends the notification to an existing window and focuses it.
	Deliver DecisionKind = iota
	// Create stores the path as pending and constructs a new window.
	Create
)

func (k DecisionKind) String() string {
	switch k {
	case Deliver:
		return "deliver"
	case Create:
		return "create"
	default:
		return "unknown"
	}
}

// Decision is the routing outcome for one file-open request.
type Decision struct {
	Kind         DecisionKind
	Notification Notification
	Window       WindowInfo
	Pending      string
}

// Path returns the file path the decision carries.
func (d Decision) Path() string {
	if d.Kind == Create {
		return d.Pending
	}
	return d.Notification.Path
}

// Decide routes path against the current window set.
func Decide(windows []WindowInfo, path string) Decision {
	w, ok := SelectWindow(windows)
	if !ok {
		return Decision{Kind: Create, Pending: path}
	}
	return Decision{
		Kind:         Deliver,
		Notification: FileOpen(path, w.Label),
		Window:       w,
	}
}

// Outcome classifies the result of a best-effort window operation.
type Outcome int

const (
	Delivered Outcome = iota
	WindowGone
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case WindowGone:
		return "window gone"
	default:
		return "failed"
	}
}

// OutcomeOf maps a host error onto an Outcome.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return Delivered
	case errors.Is(err, ErrWindowClosed):
		return WindowGone
	default:
		return Failed
	}
}
