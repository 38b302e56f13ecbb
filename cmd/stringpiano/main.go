package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/huiziwang666/ainfinite-string-piano/internal/app"
	"github.com/huiziwang666/ainfinite-string-piano/internal/instrument"
	"github.com/huiziwang666/ainfinite-string-piano/internal/server"
	"github.com/huiziwang666/ainfinite-string-piano/internal/store"
	"github.com/huiziwang666/ainfinite-string-piano/internal/tray"
)

const listenAddr = ":8080"

func main() {
	fmt.Println("String Piano - Air String Instrument")

	// Initialize the store
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dataDir := filepath.Join(homeDir, ".stringpiano")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataDir, "catalog.db")
	st, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// Discover instrument packs and sync the catalog
	mgr := instrument.NewManager(filepath.Join(dataDir, "instruments"))
	if err := mgr.Discover(); err != nil {
		log.Printf("Instrument discovery: %v", err)
	}
	if err := mgr.Sync(st); err != nil {
		log.Printf("Instrument sync: %v", err)
	}

	a := app.New(app.Config{
		Store: st,
	})
	defer a.Close()

	// Find web directory
	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir:  webDir,
		Store:      st,
		Camera:     a.Camera(),
		Controller: a,
	})
	a.SetPublisher(srv.State())

	go func() {
		fmt.Printf("Starting server on %s\n", listenAddr)
		if err := srv.ListenAndServe(listenAddr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if err := a.Start(); err != nil {
		log.Printf("Capture start failed: %v (toggle from the tray to retry)", err)
	} else {
		a.SetEnabled(true)
	}

	// Run the tray on the main thread; this blocks until quit
	tr := tray.New()
	tr.OnToggle(func(enabled bool) {
		if enabled {
			if err := a.Start(); err != nil {
				log.Printf("Capture start failed: %v", err)
				return
			}
			a.SetEnabled(true)
		} else {
			a.SetEnabled(false)
			a.Stop()
		}
	})
	tr.OnSettings(func() {
		openBrowser("http://localhost" + listenAddr)
	})
	tr.OnQuit(func() {
		a.Stop()
	})
	a.OnNote(tr.SetLastNote)

	tr.Run()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.stringpiano/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".stringpiano", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

// openBrowser opens the given URL in the default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Open browser: %v", err)
	}
}
