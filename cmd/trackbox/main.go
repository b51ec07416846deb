// Package main provides the trackbox entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"trackbox/internal/app/engine"
	"trackbox/internal/app/queue"
	"trackbox/internal/app/sequencer"
	"trackbox/internal/domain/library"
	"trackbox/internal/infra/archive"
	"trackbox/internal/infra/config"
	"trackbox/internal/infra/logger"
	"trackbox/internal/infra/player"
)

var (
	app        = kingpin.New("trackbox", "Archive-fed playback sequencer").Version(appVersion())
	configPath = app.Flag("config", "Path to config file").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()
	archiveArg = app.Arg("archives", "Archive files loaded as playlists, in order").Strings()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	loggerConfig := logger.Config{
		Output: cfg.Log.Output,
		Level:  cfg.Log.Level,
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("trackbox error: %v", err)
		os.Exit(1)
	}
}

func appVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

func loadConfig() (*config.Config, error) {
	if *configPath != "" {
		return config.Load(*configPath)
	}
	return config.Default()
}

// run executes the main player logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lib := library.New()
	defer lib.Release()

	settings := cfg.Engine.Settings
	if settings == nil {
		settings = map[string]any{}
	}
	if _, ok := settings["position_update_ms"]; !ok {
		settings["position_update_ms"] = cfg.Playback.PositionUpdateMs
	}
	eng, err := player.FromConfig(cfg.Engine.Type, settings)
	if err != nil {
		return err
	}
	adapter := engine.NewAdapter(eng)
	defer adapter.Close()

	seq := sequencer.New(lib, queue.New(lib), adapter)
	defer seq.Close()
	go seq.Run(ctx)

	reader := archive.NewReader(cfg.NormalizedExtensions())
	paths := append(append([]string{}, cfg.Library.Archives...), *archiveArg...)
	for _, path := range paths {
		if err := loadArchive(ctx, reader, seq, path); err != nil {
			// A bad upload rejects that archive only; previously
			// loaded playlists stay usable.
			zlog.Error().Err(err).Msgf("Failed to load archive: %s", path)
		}
	}

	subID, events := seq.Subscribe()
	defer seq.Unsubscribe(subID)
	go logEvents(events)

	consoleDone := make(chan struct{})
	console := newConsole(seq, reader, lib)
	go func() {
		defer close(consoleDone)
		console.loop(ctx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case <-consoleDone:
		zlog.Info().Msg("Console closed, shutting down...")
	}

	cancel()
	zlog.Info().Msg("Player stopped")
	return nil
}

// loadArchive extracts one archive into a new playlist named after it.
func loadArchive(ctx context.Context, reader *archive.Reader, seq *sequencer.Sequencer, path string) error {
	tracks, err := reader.Extract(ctx, path)
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		zlog.Warn().Msgf("No audio tracks found in %s, skipping", path)
		return nil
	}

	index, err := seq.AddPlaylist(playlistName(path), tracks)
	if err != nil {
		return err
	}
	zlog.Info().Msgf("Loaded playlist %d (%q, %d tracks)", index, playlistName(path), len(tracks))
	return nil
}

// logEvents mirrors sequencer transitions into the log.
func logEvents(events <-chan sequencer.Event) {
	for ev := range events {
		switch ev.Type {
		case sequencer.EventTrackChanged:
			if ev.Track != nil {
				zlog.Info().Msgf("Now playing: %s (playlist %d, track %d)",
					ev.Track.Name, ev.Selection.Playlist, ev.Selection.Track)
			}
		case sequencer.EventStatusChanged:
			zlog.Info().Msgf("Playback %s", ev.Status)
		case sequencer.EventQueueChanged:
			zlog.Debug().Msg("Queue changed")
		case sequencer.EventLibraryChanged:
			zlog.Info().Msg("Library updated")
		}
	}
}
