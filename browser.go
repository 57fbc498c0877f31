package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/browser"
)

const (
	msgHello = "hello"
	msgEvent = "event"
	msgFocus = "focus"
	msgState = "state"
)

// Message is exchanged with browser windows over their websocket.
type Message struct {
	Type    string `json:"type"`
	Label   string `json:"label,omitempty"`
	Event   string `json:"event,omitempty"`
	Path    string `json:"path,omitempty"`
	Focused bool   `json:"focused,omitempty"`
	Visible bool   `json:"visible,omitempty"`
}

var errSendBufferFull = errors.New("window send buffer full")

type browserWindow struct {
	label   string
	focused bool
	visible bool
	send    chan Message
}

// BrowserHost treats every connected browser tab as a window. Tabs report
// focus and visibility; notifications reach them over the same socket.
type BrowserHost struct {
	mu      sync.RWMutex
	windows []*browserWindow
	baseURL string

	// openURL opens a new tab; replaced in tests.
	openURL func(string) error

	upgrader websocket.Upgrader
}

// NewBrowserHost creates a host with no windows.
func NewBrowserHost() *BrowserHost {
	return &BrowserHost{
		openURL: browser.OpenURL,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return r.Header.Get("Origin") == "" || r.Header.Get("Origin") == "http://"+r.Host
			},
		},
	}
}

// SetBaseURL records where new windows should point.
func (h *BrowserHost) SetBaseURL(url string) {
	h.mu.Lock()
	h.baseURL = url
	h.mu.Unlock()
}

// Windows returns a snapshot of connected tabs in connection order.
func (h *BrowserHost) Windows() []WindowInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]WindowInfo, 0, len(h.windows))
	for _, w := range h.windows {
		out = append(out, WindowInfo{Label: w.label, Focused: w.focused, Visible: w.visible})
	}
	return out
}

// MultiWindow is true: every new tab is another window.
func (h *BrowserHost) MultiWindow() bool { return true }

// Emit sends n to its target tab, or to every tab when n has no target.
func (h *BrowserHost) Emit(n Notification) error {
	msg := Message{Type: msgEvent, Event: n.Event, Path: n.Path}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if n.Target == "" {
		for _, w := range h.windows {
			trySend(w, msg)
		}
		return nil
	}
	w := h.lookup(n.Target)
	if w == nil {
		return ErrWindowClosed
	}
	if !trySend(w, msg) {
		return errSendBufferFull
	}
	return nil
}

// Show marks the tab visible and asks it to take focus.
func (h *BrowserHost) Show(label string) error {
	h.mu.Lock()
	w := h.lookup(label)
	if w != nil {
		w.visible = true
	}
	h.mu.Unlock()
	if w == nil {
		return ErrWindowClosed
	}
	return h.Focus(label)
}

// Focus asks the tab to take focus.
func (h *BrowserHost) Focus(label string) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	w := h.lookup(label)
	if w == nil {
		return ErrWindowClosed
	}
	if !trySend(w, Message{Type: msgFocus}) {
		return errSendBufferFull
	}
	return nil
}

// CreateWindow opens a new tab on the editor.
func (h *BrowserHost) CreateWindow() error {
	h.mu.RLock()
	url := h.baseURL
	h.mu.RUnlock()
	if url == "" {
		return errors.New("server not started")
	}
	log.Printf("[Browser] Opening new window at %s", url)
	if err := h.openURL(url); err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	return nil
}

// lookup must be called with mu held.
func (h *BrowserHost) lookup(label string) *browserWindow {
	for _, w := range h.windows {
		if w.label == label {
			return w
		}
	}
	return nil
}

func (h *BrowserHost) register() *browserWindow {
	w := &browserWindow{
		label: "window-" + uuid.NewString(),
		send:  make(chan Message, 16),
	}
	// Queued before the window is visible to other senders.
	w.send <- Message{Type: msgHello, Label: w.label}
	h.mu.Lock()
	h.windows = append(h.windows, w)
	h.mu.Unlock()
	log.Printf("[Browser] Window %s connected", w.label)
	return w
}

func (h *BrowserHost) unregister(w *browserWindow) {
	h.mu.Lock()
	for i, cur := range h.windows {
		if cur == w {
			h.windows = append(h.windows[:i], h.windows[i+1:]...)
			close(w.send)
			break
		}
	}
	h.mu.Unlock()
	log.Printf("[Browser] Window %s closed", w.label)
}

func (h *BrowserHost) setState(w *browserWindow, focused, visible bool) {
	h.mu.Lock()
	if focused {
		for _, other := range h.windows {
			other.focused = false
		}
	}
	w.focused = focused
	w.visible = visible
	h.mu.Unlock()
}

func trySend(w *browserWindow, msg Message) bool {
	select {
	case w.send <- msg:
		return true
	default:
		// Drop if the tab is not reading
		return false
	}
}

// handleWindowSocket connects a tab as a new window.
func (h *BrowserHost) handleWindowSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Browser] WebSocket upgrade failed: %v", err)
		return
	}

	win := h.register()

	go writePump(conn, win.send)
	h.readPump(conn, win)
}

func writePump(conn *websocket.Conn, send <-chan Message) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *BrowserHost) readPump(conn *websocket.Conn, win *browserWindow) {
	defer h.unregister(win)

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[Browser] WebSocket error on %s: %v", win.label, err)
			}
			return
		}
		if msg.Type == msgState {
			h.setState(win, msg.Focused, msg.Visible)
		}
	}
}
