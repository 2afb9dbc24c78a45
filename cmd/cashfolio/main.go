package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cashfolio/cashfolio/internal/config"
	"github.com/cashfolio/cashfolio/internal/service"
	"github.com/cashfolio/cashfolio/internal/sources"
	"github.com/cashfolio/cashfolio/internal/store"
	"github.com/cashfolio/cashfolio/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}

	if err := store.RunMigrations(cfg.Database.Path); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer st.Close()

	app := service.New(st, sources.NewRegistry(), cfg.Cache.MaxEntries)
	if err := app.Init(ctx); err != nil {
		log.Fatalf("load state: %v", err)
	}

	// Non-interactive import: cashfolio import file.csv [more.csv ...]
	paths, isImport, err := importArgs(os.Args)
	if err != nil {
		log.Fatal(err)
	}
	if isImport {
		for _, path := range paths {
			data, err := os.ReadFile(path)
			if err != nil {
				log.Fatalf("read %s: %v", path, err)
			}
			stored, err := app.Import(ctx, filepath.Base(path), string(data))
			if err != nil {
				log.Fatalf("import %s: %v", path, err)
			}
			fmt.Printf("imported %s\n", stored)
		}
		return
	}

	p := tea.NewProgram(tui.New(ctx, cfg, app), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("tui: %v", err)
	}
}

// importArgs decides between the import subcommand and the interactive UI.
// An import invocation without file arguments is an error rather than a
// fall-through to the UI.
func importArgs(args []string) (paths []string, isImport bool, err error) {
	if len(args) < 2 || args[1] != "import" {
		return nil, false, nil
	}
	if len(args) < 3 {
		return nil, true, errors.New("usage: cashfolio import <file.csv> [more.csv ...]")
	}
	return args[2:], true, nil
}
