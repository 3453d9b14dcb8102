package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sadopc/bondvault/internal/attach"
	"github.com/sadopc/bondvault/internal/calendar"
	"github.com/sadopc/bondvault/internal/calllog"
	"github.com/sadopc/bondvault/internal/config"
	"github.com/sadopc/bondvault/internal/logging"
	"github.com/sadopc/bondvault/internal/store"
	"github.com/sadopc/bondvault/internal/theme"
	"github.com/sadopc/bondvault/internal/tui"
	"github.com/sadopc/bondvault/internal/vault"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml (default: $BONDVAULT_CONFIG or the user config dir)")
	writeConfig := flag.Bool("write-config", false, "write the effective config to the config path and exit")
	flag.Parse()

	if err := run(*configPath, *writeConfig); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, writeConfig bool) error {
	if configPath == "" {
		p, err := config.Path()
		if err != nil {
			return fmt.Errorf("locate config: %w", err)
		}
		configPath = p
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if writeConfig {
		if err := config.Save(configPath, cfg); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Println("wrote", configPath)
		return nil
	}

	logger, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logger.Sync()

	s, err := store.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()

	pins := vault.NewPINStore(vault.NewFileSecretStore(cfg.SecretsPath))
	gate, err := vault.NewGate(pins, nil, s)
	if err != nil {
		return fmt.Errorf("open vault: %w", err)
	}

	themes, err := theme.NewProvider(s, nil)
	if err != nil {
		return err
	}

	files := attach.New(cfg.AttachmentsDir)
	cal := calendar.NewICSWriter(cfg.CalendarPath)

	logger.Info("starting",
		zap.String("config", configPath),
		zap.String("db", cfg.DBPath),
		zap.String("attachments", files.Dir()),
		zap.String("calendar", cal.Path()),
		zap.String("theme", string(themes.Current().Mode)),
	)

	app := tui.NewApp(tui.Deps{
		Store:     s,
		Gate:      gate,
		Themes:    themes,
		Files:     files,
		Calendar:  cal,
		CallLog:   calllog.New(nil, s),
		ExportDir: cfg.ExportDir,
		Logger:    logger,
	})
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	logger.Info("stopped")
	return nil
}
