package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"karolbroda.com/ytmirror/internal/config"
	"karolbroda.com/ytmirror/internal/logger"
	"karolbroda.com/ytmirror/internal/lyrics"
	"karolbroda.com/ytmirror/internal/mpris"
	"karolbroda.com/ytmirror/internal/notify"
	"karolbroda.com/ytmirror/internal/playback"
	"karolbroda.com/ytmirror/internal/remote"
	"karolbroda.com/ytmirror/internal/settings"
	"karolbroda.com/ytmirror/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "start the interactive mirror",
	Long:  `connects to the player and starts the terminal viewer with synchronized lyrics.`,
	RunE:  runMirror,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runMirror(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Pretty)

	notifier := notify.New(cfg.Lyrics.ShowFailedToasts)

	// flag overrides; a malformed endpoint is rejected and the previous
	// value kept, matching the settings form in the desktop client
	if apiURL != "" {
		if err := config.ValidateURL(apiURL); err != nil {
			logger.Log.Warn().Str("url", apiURL).Msg("invalid api url, keeping configured endpoint")
			notifier.Failure("Invalid URL format for the API server: " + apiURL)
		} else {
			cfg.API.URL = apiURL
		}
	}
	if lrclibURL != "" {
		if err := config.ValidateURL(lrclibURL); err != nil {
			logger.Log.Warn().Str("url", lrclibURL).Msg("invalid lrclib url, keeping configured endpoint")
		} else {
			cfg.Lyrics.LrclibURL = lrclibURL
		}
	}
	if cmd.Flags().Changed("delay") {
		cfg.Lyrics.DelayMs = config.ClampDelay(delayMs)
	}
	if position != "" {
		cfg.Lyrics.Position = position
		cfg.Normalize()
	}
	if noLyrics {
		cfg.Lyrics.Show = false
	}
	if noCache {
		cfg.Lyrics.DisableCache = true
	}
	if enableMPRIS {
		cfg.MPRIS.Enabled = true
	}

	durable, err := settings.NewStore()
	if err != nil {
		logger.Log.Warn().Err(err).Msg("volume persistence unavailable")
		durable = nil
	}

	// the client's callbacks close over the store, which in turn sends
	// commands through the client
	var store *playback.Store
	client := remote.NewClient(cfg.API.URL,
		func(patch *remote.StatePatch) { store.Apply(patch) },
		func() { store.OnConnected() },
	)
	store = playback.NewStore(client, durable)
	defer client.Close()

	var cache *lyrics.Cache
	if !cfg.Lyrics.DisableCache {
		cache, err = lyrics.NewCache()
		if err != nil {
			logger.Log.Warn().Err(err).Msg("transcript cache unavailable")
			cache = nil
		}
	}

	var wake func()
	feed := lyrics.NewFeed(lyrics.NewClient(cfg.Lyrics.LrclibURL), store, lyrics.FeedOptions{
		Cache:     cache,
		OnFailure: notifier.Failure,
		OnChange: func() {
			if wake != nil {
				wake()
			}
		},
	})

	model := ui.NewModel(ui.ModelConfig{
		Store:  store,
		Feed:   feed,
		Config: cfg,
	})
	wake = model.NotifyChanged

	unsubscribe := store.Subscribe(model.NotifyChanged)
	defer unsubscribe()

	feed.Start()
	defer feed.Stop()

	if cfg.MPRIS.Enabled {
		bridge, err := mpris.Start(store)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("mpris bridge unavailable")
		} else {
			defer bridge.Stop()
		}
	}

	client.Connect()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running bubble tea: %w", err)
	}

	return nil
}
