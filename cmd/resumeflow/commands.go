// Package main provides the resumeflow command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dukex/resumeflow/pkg/cmd"
	"github.com/dukex/resumeflow/pkg/config"
	"github.com/dukex/resumeflow/pkg/log"
	"github.com/dukex/resumeflow/pkg/protocol"
	"github.com/dukex/resumeflow/pkg/providers/file"
	"github.com/dukex/resumeflow/pkg/workflow"
	cli "github.com/urfave/cli/v3"
)

func commonFlags() []cli.Flag {
	return []cli.Flag{
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
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			Value:   "info",
			Sources: cli.EnvVars("LOG_LEVEL"),
		},
	}
}

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:                  "resumeflow",
		Usage:                 "Tailor a resume with a pipeline of agents",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			{
				Name:    "run",
				Aliases: []string{"r"},
				Usage:   "Run the tailoring workflow and print the result",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "profile",
						Aliases:  []string{"p"},
						Usage:    "Path to the profile JSON document",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "instructions",
						Aliases:  []string{"i"},
						Usage:    "Tailoring instructions",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "job",
						Aliases: []string{"j"},
						Usage:   "Path to a plain-text job description",
					},
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "API key for the generation service",
						Sources: cli.EnvVars("OPENAI_API_KEY"),
					},
				}, commonFlags()...),
				Action: func(ctx context.Context, command *cli.Command) error {
					return runWorkflow(ctx, command, out)
				},
			},
			{
				Name:  "agents",
				Usage: "List the registered agents",
				Flags: commonFlags(),
				Action: func(ctx context.Context, command *cli.Command) error {
					return listAgents(ctx, command, out)
				},
			},
			{
				Name:  "validate",
				Usage: "Validate a profile document and the configuration",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "profile",
						Aliases:  []string{"p"},
						Usage:    "Path to the profile JSON document",
						Required: true,
					},
				}, commonFlags()...),
				Action: func(ctx context.Context, command *cli.Command) error {
					return validate(ctx, command, out)
				},
			},
			{
				Name:  "status",
				Usage: "Print the stored step status of a run",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Request id of the run",
						Required: true,
					},
				}, commonFlags()...),
				Action: func(ctx context.Context, command *cli.Command) error {
					return showStatus(ctx, command, out)
				},
			},
		},
	}
}

func loadConfig(command *cli.Command) (*config.Config, error) {
	log.Setup(command.String("log-level"))

	cfg, err := config.Load(command.String("config"))
	if err != nil {
		return nil, err
	}

	if url := command.String("storage-url"); url != "" {
		cfg.Storage.URL = url
	}

	if command.IsSet("api-key") {
		cfg.Generation.APIKey = command.String("api-key")
	}

	return cfg, nil
}

func withRuntime(ctx context.Context, command *cli.Command, fn func(*cmd.Runtime) error) error {
	logger := log.WithModule("cli")

	cfg, err := loadConfig(command)
	if err != nil {
		return err
	}

	runtime, err := cmd.NewRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}

	defer func() {
		if err := runtime.Close(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to close runtime", "error", err)
		}
	}()

	return fn(runtime)
}

func runWorkflow(ctx context.Context, command *cli.Command, out io.Writer) error {
	profile, err := file.LoadProfileFile(ctx, command.String("profile"))
	if err != nil {
		return err
	}

	req := workflow.Request{
		Profile:      profile,
		Instructions: command.String("instructions"),
	}

	if path := command.String("job"); path != "" {
		req.JobDescription, err = file.LoadJobDescriptionFile(ctx, path)
		if err != nil {
			return err
		}
	}

	return withRuntime(ctx, command, func(runtime *cmd.Runtime) error {
		result := runtime.Engine.Run(ctx, req)

		if err := writeJSON(out, result); err != nil {
			return err
		}

		if result.Partial() {
			return cli.Exit(fmt.Sprintf("run %s stopped at %s: %s", result.RequestID, result.FailedStep, result.FailureReason), 2)
		}

		return nil
	})
}

func listAgents(ctx context.Context, command *cli.Command, out io.Writer) error {
	return withRuntime(ctx, command, func(runtime *cmd.Runtime) error {
		for _, name := range runtime.Registry.Names() {
			agent, err := runtime.Registry.Resolve(name)
			if err != nil {
				return err
			}

			description := ""
			if describer, ok := agent.(protocol.Describer); ok {
				description = describer.Description()
			}

			if _, err := fmt.Fprintf(out, "%-22s %s\n", name, description); err != nil {
				return err
			}
		}

		return nil
	})
}

func validate(ctx context.Context, command *cli.Command, out io.Writer) error {
	cfg, err := loadConfig(command)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	profile, err := file.LoadProfileFile(ctx, command.String("profile"))
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "profile %q is valid (%d experiences, %d skills)\n", profile.Name, len(profile.Experiences), len(profile.Skills))

	return err
}

func showStatus(ctx context.Context, command *cli.Command, out io.Writer) error {
	return withRuntime(ctx, command, func(runtime *cmd.Runtime) error {
		status, err := runtime.Engine.GetStepStatus(ctx, command.String("id"))
		if err != nil {
			return err
		}

		return writeJSON(out, status)
	})
}

func writeJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}
