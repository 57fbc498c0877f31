package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
)

func main() {
	cfg := loadConfig(os.Args)
	if cfg.ShowVersion {
		fmt.Println("emerald", versionString())
		return
	}

	var err error
	switch cfg.Mode {
	case ModeMCP:
		err = runMCP(cfg)
	case ModeServe:
		err = runServe(cfg, os.Args)
	default:
		if closer := logToFile(cfg.StateDir); closer != nil {
			defer closer.Close()
		}
		err = runNative(cfg, os.Args)
	}
	if err != nil {
		log.Fatal("Error: ", err)
	}
}

// logToFile sends the log to the state dir. A GUI process on Windows has no
// console to write to.
func logToFile(dir string) io.Closer {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}
	f, err := os.OpenFile(filepath.Join(dir, appName+".log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil
	}
	log.SetOutput(f)
	return f
}

// runServe serves the editor to browser tabs. When another instance is
// already serving, this launch is handed to it instead.
func runServe(cfg Config, args []string) error {
	url, err := runningInstance()
	switch {
	case err == nil:
		cwd, _ := os.Getwd()
		if err := forwardToExisting(url, args, cwd); err != nil {
			log.Printf("[Instance] Running instance did not answer, starting a new one: %v", err)
			break
		}
		fmt.Printf("Already running at %s\n", url)
		return nil
	case !errors.Is(err, errNoInstance):
		log.Printf("[Instance] Ignoring unreadable instance state: %v", err)
	}

	host := NewBrowserHost()
	shell := NewShell(host, NewPathResolver(cfg.BuildDir))

	srv, err := startServer(shell, host)
	if err != nil {
		return err
	}
	fmt.Printf("Emerald running at %s\n", srv.url)

	shell.Startup(args)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	<-ctx.Done()

	srv.shutdown()
	fmt.Println("Stopped.")
	return nil
}
