// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles database and configuration bootstrap.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize database and run migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// serveCommand starts the HTTP service.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the portal HTTP service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// syncCommand runs one analytics sync from the terminal.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Run one analytics sync for a user and platform",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "user",
				Aliases:  []string{"u"},
				Usage:    "Portal user identifier",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "platform",
				Aliases:  []string{"p"},
				Usage:    "Platform name (spotify, youtube, apple_music, audiomack, boomplay)",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Sync,
	}
}

// connectionsCommand inspects stored platform connections.
func connectionsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "connections",
		Aliases: []string{"conn"},
		Usage:   "Inspect stored platform connections",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List stored connections",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "user",
						Usage: "Filter by user identifier",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ConnectionsList,
			},
		},
	}
}

// notifyCommand exercises the notification pipeline.
func notifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "notify",
		Usage: "Notification operations",
		Commands: []*cli.Command{
			{
				Name:  "test",
				Usage: "Send a test announcement through the mailer",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "to",
						Usage: "Recipient address (defaults to admin profiles)",
					},
				},
				Action: r.NotifyTest,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for browsing connections.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for connections and analytics",
		Action:  r.TUI,
	}
}
