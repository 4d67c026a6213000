package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/emtee40/retrowars/internal/config"
	"github.com/emtee40/retrowars/internal/identity"
	"github.com/emtee40/retrowars/internal/session"
	"github.com/emtee40/retrowars/internal/tui/app"
)

func main() {
	addr := flag.String("addr", "", "server host:port (overrides config)")
	configPath := flag.String("config", "", "path to config file")
	debug := flag.Bool("debug", false, "open the debug log on startup")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
	}
	if *addr != "" {
		cfg.Server.Address = *addr
	}
	showDebug := *debug || cfg.Debug

	id, err := identity.NewStore(cfg.StateDir).Load()
	if err != nil {
		log.Fatalf("loading identity: %v", err)
	}

	// The connection internals log through the standard logger, which would
	// tear the alt screen: send it to a file when debugging, off otherwise.
	if showDebug {
		if f, err := tea.LogToFile("retrowars-debug.log", ""); err == nil {
			defer f.Close()
		}
	} else {
		log.SetOutput(io.Discard)
	}

	mgr := session.NewManager(id.PlayerID)
	mgr.SetKeepAlive(cfg.Server.KeepAlive)

	m := app.New(mgr, cfg.Server.Address, showDebug)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
