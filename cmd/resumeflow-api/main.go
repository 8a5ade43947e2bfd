package main

import (
	"context"
	"os"

	"github.com/dukex/resumeflow/pkg/cmd"
	"github.com/dukex/resumeflow/pkg/config"
	"github.com/dukex/resumeflow/pkg/log"
	"github.com/dukex/resumeflow/pkg/providers/file"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9091

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "resumeflow-api",
		Usage:                 "Serve resume tailoring runs over HTTP",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
				Sources: cli.EnvVars("RESUMEFLOW_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "storage-url",
				Usage:   "Run status storage URL (memory://, file://, redis://, postgres://)",
				Sources: cli.EnvVars("STORAGE_URL"),
			},
			&cli.StringFlag{
				Name:    "documents-path",
				Usage:   "Directory holding stored profiles (<id>.json) and job descriptions (<id>.txt)",
				Value:   "./documents",
				Sources: cli.EnvVars("DOCUMENTS_PATH"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Lifecycle event bus provider (none, gochannel, kafka)",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "API key for the generation service",
				Sources: cli.EnvVars("OPENAI_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing resumeflow API")

			cfg, err := config.Load(command.String("config"))
			if err != nil {
				return err
			}

			applyOverrides(cfg, command)

			runtime, err := cmd.NewRuntime(ctx, cfg, logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := runtime.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close runtime", "error", err)
				}
			}()

			docs := command.String("documents-path")

			api := NewAPI(
				logger,
				runtime.Engine,
				runtime.Registry,
				runtime.Store,
				file.NewProfileStore(docs),
				file.NewJobDescriptions(docs),
			)

			return api.Start(command.Int("port"))
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}

func applyOverrides(cfg *config.Config, command *cli.Command) {
	if url := command.String("storage-url"); url != "" {
		cfg.Storage.URL = url
	}

	if provider := command.String("event-bus"); provider != "" {
		cfg.EventBus.Provider = provider
	}

	if key := command.String("api-key"); key != "" {
		cfg.Generation.APIKey = key
	}
}
