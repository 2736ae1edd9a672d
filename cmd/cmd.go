// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   defaultConfigPath,
	}
}

func playlistFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "playlist",
		Aliases: []string{"p"},
		Usage:   "Scan only this playlist (overrides library.fetch_all)",
	}
}

func verboseFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Enable debug logging",
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output JSON",
	}
}

// syncCommand runs the localization pipeline
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Rewrite track metadata from the catalog",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run one sync pass and print a summary",
				Flags: []cli.Flag{
					configFlag(),
					playlistFlag(),
					verboseFlag(),
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Look up tracks without changing the library or the ledger",
					},
					&cli.IntFlag{
						Name:  "max",
						Usage: "Stop after this many catalog lookups (0 means no limit)",
					},
					&cli.StringFlag{
						Name:  "report",
						Usage: "Write a run report to this path (a directory gets a generated name)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Report format: csv, markdown, txt or json",
						Value:   "csv",
					},
				},
				Action: r.SyncRun,
			},
			{
				Name:  "ui",
				Usage: "Run a sync pass in the interactive terminal UI",
				Flags: []cli.Flag{
					configFlag(),
					playlistFlag(),
					verboseFlag(),
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Look up tracks without changing the library or the ledger",
					},
				},
				Action: r.SyncUI,
			},
		},
	}
}

// ledgerCommand inspects the processed-ID ledger
func ledgerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "ledger",
		Usage: "Inspect the processed track ledger",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "List processed persistent IDs",
				Flags:  []cli.Flag{configFlag(), jsonFlag()},
				Action: r.LedgerShow,
			},
			{
				Name:  "check",
				Usage: "Report whether a persistent ID has been processed",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.LedgerCheck,
			},
		},
	}
}

// libraryCommand reads from the media application
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "library",
		Usage: "Read tracks from the media application",
		Commands: []*cli.Command{
			{
				Name:   "tracks",
				Usage:  "List the tracks a sync pass would see",
				Flags:  []cli.Flag{configFlag(), playlistFlag(), jsonFlag(), verboseFlag()},
				Action: r.LibraryTracks,
			},
		},
	}
}

// catalogCommand queries the search API directly
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Query the catalog search API",
		Commands: []*cli.Command{
			{
				Name:  "search",
				Usage: "Look up localized metadata for a title and artist",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "title",
					},
					&cli.StringArg{
						Name: "artist",
					},
				},
				Flags: []cli.Flag{
					configFlag(),
					jsonFlag(),
					verboseFlag(),
					&cli.StringFlag{
						Name:  "country",
						Usage: "Storefront country code (defaults to catalog.country)",
					},
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the matched track in the browser",
					},
				},
				Action: r.CatalogSearch,
			},
		},
	}
}

// historyCommand reads the run history store
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect recorded sync runs",
		Commands: []*cli.Command{
			{
				Name:  "runs",
				Usage: "List recent runs, newest first",
				Flags: []cli.Flag{
					configFlag(),
					jsonFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to list",
						Value: 20,
					},
				},
				Action: r.HistoryRuns,
			},
			{
				Name:  "show",
				Usage: "Show one run by ID or sequence number",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "run",
					},
				},
				Flags: []cli.Flag{
					configFlag(),
					jsonFlag(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Print the run as csv, markdown, txt or json",
					},
				},
				Action: r.HistoryShow,
			},
		},
	}
}

// setupCommand initializes local files
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the configuration file and history database",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write config.toml from the built-in template",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the history database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}
