// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand initializes configuration and the catalog database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml and initialize the catalog database",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "seed",
				Usage: "Seed the catalog with the bundled Game Pass sample data",
			},
		},
		Action: r.Setup,
	}
}

// searchCommand runs a one-shot catalog search against the availability API
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "search",
		Aliases: []string{"s"},
		Usage:   "Search the catalog for a game and show per-service availability",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "services",
				Usage: "Comma-separated subscriptions you hold (gamepass,psplus,ubisoftplus); defaults to all",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, csv, or markdown",
				Value:   "text",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Search,
	}
}

// serveCommand starts the availability API server
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the availability API server",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "host",
				Usage: "Override the configured bind host",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Override the configured port",
			},
			&cli.BoolFlag{
				Name:  "mock",
				Usage: "Serve the bundled sample catalog instead of scraping",
			},
		},
		Action: r.Serve,
	}
}

// refreshCommand re-ingests service catalogs into the local database
func refreshCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "Fetch service catalogs and upsert them into the database",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "region",
				Usage: "Catalog region to refresh (defaults to the configured market)",
			},
			&cli.BoolFlag{
				Name:  "mock",
				Usage: "Use the bundled sample data instead of scraping",
			},
			&cli.BoolFlag{
				Name:  "remote",
				Usage: "Ask a running API server to refresh instead of fetching locally",
			},
		},
		Action: r.Refresh,
	}
}

// jobsCommand lists recent refresh jobs
func jobsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "jobs",
		Usage: "List recent catalog refresh jobs",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of jobs to show",
				Value: 10,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Jobs,
	}
}

// tuiCommand launches the interactive search UI
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Launch the interactive search UI",
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: r.TUI,
	}
}
