//go:build !windows

package main

// startTray is a no-op on non-Windows platforms, where closing the window
// quits the application.
func startTray(app *App) {}
