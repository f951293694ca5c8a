package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/scythe504/sketchroom/internal/config"
	"github.com/scythe504/sketchroom/internal/game"
	"github.com/scythe504/sketchroom/internal/logger"
	"github.com/scythe504/sketchroom/internal/server"
	"github.com/scythe504/sketchroom/internal/storage"
	"github.com/scythe504/sketchroom/internal/utils"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("[main] could not read .env")
	}

	cfg := &config.Config{}
	cobra.CheckErr(config.NewCommand(cfg, run).Execute())
}

func run(ctx context.Context, cfg *config.Config) error {
	logger.Setup(cfg.Verbose, os.Stdout)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings := game.Settings{
		ScoreLimit:    cfg.ScoreLimit,
		RoundDuration: cfg.RoundDuration,
		BotEnabled:    cfg.Bot,
	}

	var history server.HistorySource
	if cfg.DatabaseURL != "" {
		db, err := openDatabase(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		settings.Words, err = db.LoadWords(ctx)
		if err != nil {
			return err
		}
		settings.Recorder = db
		history = db
	} else if cfg.WordsFile != "" {
		words, err := utils.ReadCsvFile(cfg.WordsFile)
		if err != nil {
			return err
		}
		settings.Words = words
	}

	if len(settings.Words) == 0 {
		log.Info().Msg("[run] no word list configured, using built-in words")
		settings.Words = utils.DefaultWords
	}
	log.Info().Int("words", len(settings.Words)).Dur("round", cfg.RoundDuration).Int("score_limit", cfg.ScoreLimit).Msg("[run] starting")

	srv := server.NewServer(game.NewRegistry(settings), server.Options{
		HeaderLen:    cfg.HeaderLen,
		MaxBodyLen:   cfg.MaxBodyLen,
		WriteTimeout: cfg.WriteTimeout,
		MessageRate:  cfg.MessageRate,
		MessageBurst: cfg.MessageBurst,
		Version:      config.ReleaseVersion,
	}, history)

	return srv.Run(ctx, cfg.TCPAddr(), cfg.HTTPAddr())
}

// openDatabase connects, migrates and seeds the word table from the words
// file when one is given.
func openDatabase(ctx context.Context, cfg *config.Config) (*storage.Postgres, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := storage.NewPostgres(connectCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(connectCtx); err != nil {
		db.Close()
		return nil, err
	}

	if cfg.WordsFile != "" {
		words, err := utils.ReadCsvFile(cfg.WordsFile)
		if err != nil {
			db.Close()
			return nil, err
		}
		added, err := db.AddWords(connectCtx, words)
		if err != nil {
			db.Close()
			return nil, err
		}
		log.Info().Int64("added", added).Str("file", cfg.WordsFile).Msg("[openDatabase] word list seeded")
	}
	return db, nil
}
