package main

import (
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"postergeist/internal/history"
	"postergeist/internal/location"
	"postergeist/internal/logging"
	"postergeist/internal/poster"
	"postergeist/internal/schedule"
	"postergeist/internal/services/geocode"
	"postergeist/internal/services/instagram"
	"postergeist/internal/services/openai"
	"postergeist/internal/services/vision"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var ignoreSchedule bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Post unpublished images from the configured folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			runID := uuid.NewString()
			logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("postergeist-%s.log", runID))
			logger, err := logging.New(logging.Options{
				Level:       cfg.Logging.Level,
				Format:      cfg.Logging.Format,
				OutputPaths: []string{"stdout", logPath},
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			logger = logger.With(logging.String(logging.FieldRunID, runID))

			lock := flock.New(filepath.Join(cfg.Paths.DataDir, "postergeist.lock"))
			acquired, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !acquired {
				return errors.New("another postergeist instance is already running")
			}
			defer func() {
				if err := lock.Unlock(); err != nil {
					logger.Warn("failed to release instance lock", logging.Error(err))
				}
			}()

			client, err := instagram.New(instagram.Config{
				Username:       cfg.Instagram.Username,
				Password:       cfg.Instagram.Password,
				BaseURL:        cfg.Instagram.BaseURL,
				TimeoutSeconds: cfg.Instagram.TimeoutSeconds,
			})
			if err != nil {
				return fmt.Errorf("instagram client: %w", err)
			}

			tagger, err := vision.NewTagger(vision.Config{
				Enabled:        cfg.Vision.Enabled,
				APIKey:         cfg.Vision.APIKey,
				BaseURL:        cfg.Vision.BaseURL,
				MaxResults:     cfg.Vision.MaxResults,
				TimeoutSeconds: cfg.Vision.TimeoutSeconds,
			})
			if err != nil {
				return fmt.Errorf("vision tagger: %w", err)
			}

			captioner, err := openai.NewCaptioner(openai.Config{
				Enabled:        cfg.OpenAI.Enabled,
				APIKey:         cfg.OpenAI.APIKey,
				BaseURL:        cfg.OpenAI.BaseURL,
				Model:          cfg.OpenAI.Model,
				Role:           cfg.OpenAI.Role,
				MaxTokens:      cfg.OpenAI.MaxTokens,
				Temperature:    cfg.OpenAI.Temperature,
				TimeoutSeconds: cfg.OpenAI.TimeoutSeconds,
			})
			if err != nil {
				return fmt.Errorf("captioner: %w", err)
			}

			geocoder := geocode.New(geocode.Config{
				BaseURL:        cfg.Geocoder.BaseURL,
				TimeoutSeconds: cfg.Geocoder.TimeoutSeconds,
			})
			resolver := location.NewResolver(geocoder, cfg.Instagram.DefaultCity, cfg.Instagram.LocationRangeKm, logger)

			hist, err := history.Open(cfg.Paths.HistoryPath, logger)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}

			windows, err := cfg.ScheduleWindows()
			if err != nil {
				return fmt.Errorf("parse schedule: %w", err)
			}
			if ignoreSchedule {
				all, err := schedule.ParseWindow("00:00", "23:59")
				if err != nil {
					return err
				}
				windows = []schedule.Window{all}
			}
			scheduler, err := schedule.New(windows, cfg.Schedule.MinDelaySeconds, cfg.Schedule.MaxDelaySeconds)
			if err != nil {
				return fmt.Errorf("scheduler: %w", err)
			}

			p, err := poster.New(poster.Config{
				ImageDir:         cfg.Paths.ImageDir,
				WorkDir:          cfg.Paths.WorkDir,
				ThemeTag:         cfg.Instagram.ThemeTag,
				PostLimitPerSlot: cfg.Instagram.PostLimitPerSlot,
				PollInterval:     time.Duration(cfg.Schedule.PollIntervalSeconds) * time.Second,
			}, client, tagger, captioner, resolver, hist, scheduler, logger)
			if err != nil {
				return fmt.Errorf("poster: %w", err)
			}

			logger.Info("starting posting run",
				logging.String("image_dir", cfg.Paths.ImageDir),
				logging.Int("windows", len(windows)))
			return p.Run(signalCtx)
		},
	}

	cmd.Flags().BoolVar(&ignoreSchedule, "ignore-schedule", false, "Post immediately instead of waiting for a schedule window")
	return cmd
}
