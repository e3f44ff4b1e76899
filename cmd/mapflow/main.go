package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/operacional-ops/mapflow/pkg/log"
)

func main() {
	cmd := &cli.Command{
		Name:                  "mapflow",
		Usage:                 "Run workspace automations and space templates",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			migrateCommand(),
			triggerCommand(),
			templateCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Setup("error")
		log.WithModule("mapflow").Error("command failed", "error", err)
		os.Exit(1)
	}
}
