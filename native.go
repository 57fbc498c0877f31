package main

import (
	"context"
	"io/fs"
	"log"
	goruntime "runtime"
	"sync"
	"sync/atomic"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

const (
	nativeLabel    = "main"
	nativeUniqueID = "dev.emerald.editor"
)

// NativeHost drives the single Wails webview window. Closing the window hides
// it; the next create request reloads the front-end into it.
type NativeHost struct {
	mu      sync.Mutex
	ctx     context.Context
	live    bool
	visible bool

	quitting atomic.Bool
}

func NewNativeHost() *NativeHost {
	return &NativeHost{}
}

// Windows returns the main window while it is open. Until the runtime has
// started there is no window to address.
func (h *NativeHost) Windows() []WindowInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.live || h.ctx == nil {
		return nil
	}
	// Wails v2 has no focus query; a shown, unminimised window stands in.
	focused := h.visible && !runtime.WindowIsMinimised(h.ctx)
	return []WindowInfo{{Label: nativeLabel, Focused: focused, Visible: h.visible}}
}

// MultiWindow is false: there is only the one webview.
func (h *NativeHost) MultiWindow() bool { return false }

func (h *NativeHost) Emit(n Notification) error {
	ctx, err := h.liveContext(n.Target)
	if err != nil {
		return err
	}
	runtime.EventsEmit(ctx, n.Event, n.Path)
	return nil
}

func (h *NativeHost) Show(label string) error {
	ctx, err := h.liveContext(label)
	if err != nil {
		return err
	}
	runtime.WindowShow(ctx)
	runtime.WindowUnminimise(ctx)
	h.mu.Lock()
	h.visible = true
	h.mu.Unlock()
	return nil
}

// Focus raises the window. The always-on-top toggle brings it in front of
// other applications on Windows.
func (h *NativeHost) Focus(label string) error {
	ctx, err := h.liveContext(label)
	if err != nil {
		return err
	}
	runtime.WindowUnminimise(ctx)
	runtime.WindowShow(ctx)
	runtime.WindowSetAlwaysOnTop(ctx, true)
	runtime.WindowSetAlwaysOnTop(ctx, false)
	return nil
}

// CreateWindow opens the main window. Before wails.Run the window is built
// by Run itself; afterwards the hidden window is reloaded and the front-end
// reveals it through ShowMainWindow.
func (h *NativeHost) CreateWindow() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.live {
		log.Printf("[Native] Window already open")
		return nil
	}
	h.live = true
	h.visible = false
	if h.ctx != nil {
		log.Printf("[Native] Reopening window")
		runtime.WindowReloadApp(h.ctx)
	}
	return nil
}

// liveContext returns the runtime context when label names the open window.
// An empty label addresses whichever window is open.
func (h *NativeHost) liveContext(label string) (context.Context, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.live || h.ctx == nil || (label != "" && label != nativeLabel) {
		return nil, ErrWindowClosed
	}
	return h.ctx, nil
}

func (h *NativeHost) startup(ctx context.Context) {
	h.mu.Lock()
	h.ctx = ctx
	h.mu.Unlock()
}

// beforeClose hides the window to the tray on Windows. Elsewhere, and when
// quitting, the application exits.
func (h *NativeHost) beforeClose(ctx context.Context) bool {
	if h.quitting.Load() || goruntime.GOOS != "windows" {
		return false
	}
	log.Printf("[Native] Window close requested - hiding to tray")
	h.mu.Lock()
	h.live = false
	h.visible = false
	h.mu.Unlock()
	runtime.WindowHide(ctx)
	return true
}

func (h *NativeHost) quit() {
	h.quitting.Store(true)
	h.mu.Lock()
	ctx := h.ctx
	h.mu.Unlock()
	if ctx != nil {
		runtime.Quit(ctx)
	}
}

// App is bound to the front-end. Its exported methods are callable from
// JavaScript.
type App struct {
	shell *Shell
	host  *NativeHost
}

// ShowMainWindow reveals the window and delivers any pending file-open.
func (a *App) ShowMainWindow() {
	a.shell.ShowMainWindow(nativeLabel)
}

// GetCliArgs reports whether a file-open is on its way.
func (a *App) GetCliArgs() bool {
	return a.shell.GetCliArgs()
}

func (a *App) startup(ctx context.Context) {
	a.host.startup(ctx)
	go startTray(a)
}

func (a *App) onSecondInstance(data options.SecondInstanceData) {
	a.shell.HandleSecondInstance(secondInstanceArgs(data), data.WorkingDirectory)
}

// secondInstanceArgs restores the launch shape: Wails passes the arguments
// without the executable.
func secondInstanceArgs(data options.SecondInstanceData) []string {
	return append([]string{""}, data.Args...)
}

func nativeOptions(app *App) (*options.App, error) {
	assets, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, err
	}
	return &options.App{
		Title:       "Emerald",
		Width:       1000,
		Height:      800,
		Frameless:   true,
		StartHidden: true,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup:     app.startup,
		OnBeforeClose: app.host.beforeClose,
		Bind: []interface{}{
			app,
		},
		LogLevel: logger.INFO,
		SingleInstanceLock: &options.SingleInstanceLock{
			UniqueId:               nativeUniqueID,
			OnSecondInstanceLaunch: app.onSecondInstance,
		},
		Mac: &mac.Options{
			OnFileOpen: func(path string) {
				if path != "" {
					app.shell.OpenFile(path)
				}
			},
		},
	}, nil
}

// runNative runs the Wails window until the application quits.
func runNative(cfg Config, args []string) error {
	host := NewNativeHost()
	shell := NewShell(host, NewPathResolver(cfg.BuildDir))
	app := &App{shell: shell, host: host}

	shell.Startup(args)

	opts, err := nativeOptions(app)
	if err != nil {
		return err
	}
	return wails.Run(opts)
}
