package main

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

//go:embed static
var staticFiles embed.FS

const (
	pidName  = "pid"
	portName = "port"
)

// errNoInstance means no live editor server is recorded in the state dir.
var errNoInstance = errors.New("no running instance")

func stateFile(name string) string { return filepath.Join(stateDir(), name) }

func readStateInt(name string) (int, error) {
	raw, err := os.ReadFile(stateFile(name))
	if errors.Is(err, fs.ErrNotExist) {
		return 0, errNoInstance
	}
	if err != nil {
		return 0, fmt.Errorf("read %s file: %w", name, err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("parse %s file: %w", name, err)
	}
	return n, nil
}

// runningInstance returns the base URL of the editor server recorded in the
// state dir. It returns errNoInstance when nothing is recorded or the recorded
// process has exited.
func runningInstance() (string, error) {
	pid, err := readStateInt(pidName)
	if err != nil {
		return "", err
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return "", errNoInstance
	}
	// Signal 0 checks the process exists without touching it.
	if proc.Signal(syscall.Signal(0)) != nil {
		return "", fmt.Errorf("pid %d is stale: %w", pid, errNoInstance)
	}
	port, err := readStateInt(portName)
	if err != nil {
		return "", err
	}
	return "http://" + net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), nil
}

func writeState(port int) error {
	dir := stateDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := os.WriteFile(stateFile(pidName), []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		return err
	}
	return os.WriteFile(stateFile(portName), []byte(strconv.Itoa(port)), 0644)
}

// clearState forgets the recorded server so later launches start their own.
func clearState() {
	for _, name := range []string{pidName, portName} {
		if err := os.Remove(stateFile(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Printf("[Server] Failed to remove %s file: %v", name, err)
		}
	}
}

// instanceRequest carries a redirected launch to the running instance.
type instanceRequest struct {
	Args []string `json:"args"`
	Cwd  string   `json:"cwd"`
}

var instanceClient = &http.Client{Timeout: 5 * time.Second}

// forwardToExisting hands this launch's arguments to a running instance.
func forwardToExisting(baseURL string, args []string, cwd string) error {
	body, err := json.Marshal(instanceRequest{Args: args, Cwd: cwd})
	if err != nil {
		return err
	}
	resp, err := instanceClient.Post(baseURL+"/api/instance", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("forward to %s: %w", baseURL, err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("forward to %s: unexpected status %d", baseURL, resp.StatusCode)
	}
	return nil
}

// editorServer serves the front-end and the shell commands to browser windows.
type editorServer struct {
	http *http.Server
	url  string
}

func newMux(shell *Shell, host *BrowserHost) (*http.ServeMux, error) {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", host.handleWindowSocket)
	mux.HandleFunc("GET /api/windows", handleWindows(host))
	mux.HandleFunc("POST /api/windows/{label}/show", handleShowWindow(shell))
	mux.HandleFunc("GET /api/cli-args", handleCliArgs(shell))
	mux.HandleFunc("POST /api/instance", handleInstance(shell))
	mux.Handle("/", http.FileServer(http.FS(staticFS)))
	return mux, nil
}

// startServer listens on a random local port, records it in the state dir
// and serves in a background goroutine.
func startServer(shell *Shell, host *BrowserHost) (*editorServer, error) {
	mux, err := newMux(shell, host)
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	port := listener.Addr().(*net.TCPAddr).Port
	url := fmt.Sprintf("http://127.0.0.1:%d", port)

	if err := writeState(port); err != nil {
		log.Printf("Failed to write state files: %v", err)
	}
	host.SetBaseURL(url)

	srv := &editorServer{http: &http.Server{Handler: mux}, url: url}
	go func() {
		if err := srv.http.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()
	return srv, nil
}

func (s *editorServer) shutdown() {
	s.http.Close()
	clearState()
}

func handleWindows(host *BrowserHost) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(host.Windows())
	}
}

func handleShowWindow(shell *Shell) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shell.ShowMainWindow(r.PathValue("label"))
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleCliArgs(shell *Shell) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(shell.GetCliArgs())
	}
}

func handleInstance(shell *Shell) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req instanceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		shell.HandleSecondInstance(req.Args, req.Cwd)
		w.WriteHeader(http.StatusNoContent)
	}
}
