package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/operacional-ops/mapflow/pkg/actions"
	"github.com/operacional-ops/mapflow/pkg/engine"
	"github.com/operacional-ops/mapflow/pkg/log"
	"github.com/operacional-ops/mapflow/pkg/models"
	"github.com/operacional-ops/mapflow/pkg/persistence/sqlite"
	"github.com/operacional-ops/mapflow/pkg/templates"
)

// openStore configures logging and opens the store; migrations run on open.
func openStore(ctx context.Context, command *cli.Command) (*sqlite.Persistence, *slog.Logger, error) {
	log.Setup(command.String("log-level"))
	logger := log.WithModule("mapflow")

	store, err := sqlite.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	return store, logger, nil
}

func closeStore(ctx context.Context, store *sqlite.Persistence, logger *slog.Logger) {
	if err := store.Close(ctx); err != nil {
		logger.ErrorContext(ctx, "failed to close store", "error", err)
	}
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Run database schema migrations",
		Action: func(ctx context.Context, command *cli.Command) error {
			store, logger, err := openStore(ctx, command)
			if err != nil {
				return err
			}

			defer closeStore(ctx, store, logger)

			logger.InfoContext(ctx, "migrations applied")

			return nil
		},
	}
}

func triggerCommand() *cli.Command {
	return &cli.Command{
		Name:  "trigger",
		Usage: "Run status-change automations for a task",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "task", Usage: "Task id", Required: true},
			&cli.StringFlag{Name: "list", Usage: "List id the task lives in", Required: true},
			&cli.StringFlag{Name: "workspace", Usage: "Workspace id", Required: true},
			&cli.StringFlag{Name: "from", Usage: "Previous status id", Required: true},
			&cli.StringFlag{Name: "to", Usage: "New status id", Required: true},
			&cli.StringFlag{
				Name:    "user",
				Usage:   "Acting user id",
				Sources: cli.EnvVars("MAPFLOW_USER_ID"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			store, logger, err := openStore(ctx, command)
			if err != nil {
				return err
			}

			defer closeStore(ctx, store, logger)

			registry := actions.NewDefaultRegistry(logger)
			eng := engine.NewEngine(logger, store, registry)

			change := models.StatusChange{
				TaskID:      command.String("task"),
				WorkspaceID: command.String("workspace"),
				ListID:      command.String("list"),
				OldStatusID: command.String("from"),
				NewStatusID: command.String("to"),
			}

			identity := models.Identity{UserID: command.String("user")}

			summary, err := eng.HandleStatusChange(ctx, change, identity)
			if err != nil {
				return err
			}

			return printJSON(summary)
		},
	}
}

func templateCommand() *cli.Command {
	return &cli.Command{
		Name:  "template",
		Usage: "Work with space templates",
		Commands: []*cli.Command{
			{
				Name:  "apply",
				Usage: "Create a space from a template",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "template", Usage: "Template id", Required: true},
					&cli.StringFlag{Name: "workspace", Usage: "Workspace id", Required: true},
					&cli.StringFlag{Name: "name", Usage: "Name of the new space", Required: true},
					&cli.StringFlag{Name: "description", Usage: "Description of the new space"},
					&cli.StringFlag{Name: "color", Usage: "Color of the new space"},
					&cli.StringFlag{
						Name:    "user",
						Usage:   "Acting user id",
						Sources: cli.EnvVars("MAPFLOW_USER_ID"),
					},
					&cli.StringSliceFlag{
						Name:  "role",
						Usage: "Global role of the acting user (repeatable)",
					},
				},
				Action: func(ctx context.Context, command *cli.Command) error {
					store, logger, err := openStore(ctx, command)
					if err != nil {
						return err
					}

					defer closeStore(ctx, store, logger)

					templateStore := templates.NewStore(logger, store)

					identity := models.Identity{
						UserID:      command.String("user"),
						GlobalRoles: command.StringSlice("role"),
					}

					space, err := templateStore.Materialize(ctx, identity, templates.MaterializeInput{
						TemplateID:       command.String("template"),
						WorkspaceID:      command.String("workspace"),
						SpaceName:        command.String("name"),
						SpaceDescription: command.String("description"),
						SpaceColor:       command.String("color"),
					})
					if err != nil {
						return err
					}

					return printJSON(space)
				},
			},
			{
				Name:  "apply-automations",
				Usage: "Copy a template's enabled automations onto existing spaces",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "template", Usage: "Template id", Required: true},
					&cli.StringFlag{Name: "workspace", Usage: "Workspace id", Required: true},
					&cli.StringSliceFlag{
						Name:     "space",
						Usage:    "Target space id (repeatable)",
						Required: true,
					},
				},
				Action: func(ctx context.Context, command *cli.Command) error {
					store, logger, err := openStore(ctx, command)
					if err != nil {
						return err
					}

					defer closeStore(ctx, store, logger)

					templateStore := templates.NewStore(logger, store)

					summary, err := templateStore.ApplyAutomationsToSpaces(ctx,
						command.String("template"), command.String("workspace"),
						command.StringSlice("space"))
					if err != nil {
						return err
					}

					return printJSON(summary)
				},
			},
		},
	}
}
