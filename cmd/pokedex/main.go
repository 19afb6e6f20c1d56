package main

import (
	"flag"
	"fmt"
	stdlog "log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/richxcame/pokedex/internal/apiclient"
	"github.com/richxcame/pokedex/internal/favstate"
	"github.com/richxcame/pokedex/internal/tui"
	"github.com/richxcame/pokedex/pkg/config"
)

func main() {
	cfg := config.LoadClient()

	flag.StringVar(&cfg.APIURL, "api", cfg.APIURL, "base URL of the pokedex API")
	flag.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "file that keeps the session token between runs")
	serialize := flag.Bool("serialize", false, "queue repeated toggles of the same pokemon")
	debugLog := flag.String("log", os.Getenv("POKEDEX_LOG_FILE"), "write debug output to this file")
	flag.Parse()

	if *debugLog != "" {
		f, err := tea.LogToFile(*debugLog, "pokedex")
		if err != nil {
			stdlog.Fatalf("Failed to open log file: %v", err)
		}
		defer f.Close()
	}

	client := apiclient.New(cfg)
	if err := client.LoadTokenFile(cfg.TokenFile); err != nil {
		stdlog.Printf("ignoring saved session: %v", err)
	}

	var opts []favstate.Option
	if *serialize {
		opts = append(opts, favstate.WithSerializedToggles())
	}

	app := tui.NewApp(client,
		tui.WithTokenFile(cfg.TokenFile),
		tui.WithFavoritesState(favstate.New(client, opts...)),
	)
	defer app.Close()

	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "pokedex: %v\n", err)
		os.Exit(1)
	}
}
