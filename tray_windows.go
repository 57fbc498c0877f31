//go:build windows

package main

import (
	_ "embed"
	"log"

	"github.com/getlantern/systray"
)

//go:embed icon.ico
var iconData []byte

// startTray runs the system tray until Quit is chosen. The window hides to
// the tray when closed, so the tray is the way back to it.
func startTray(app *App) {
	systray.Run(func() { onTrayReady(app) }, func() {
		log.Println("[Tray] System tray exited")
	})
}

func onTrayReady(app *App) {
	log.Println("[Tray] Initializing system tray...")

	systray.SetIcon(iconData)
	systray.SetTitle("Emerald")
	systray.SetTooltip("Emerald")

	show := systray.AddMenuItem("Show Emerald", "Show the editor window")
	systray.AddSeparator()
	quit := systray.AddMenuItem("Quit", "Quit Emerald")

	go func() {
		for {
			select {
			case <-show.ClickedCh:
				log.Println("[Tray] Show window clicked")
				app.shell.Reveal()
			case <-quit.ClickedCh:
				log.Println("[Tray] Quit clicked")
				app.host.quit()
				systray.Quit()
				return
			}
		}
	}()
}
