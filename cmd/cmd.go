// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func idArg() cli.Argument {
	return &cli.StringArg{
		Name:      "id",
		UsageText: "correction id",
	}
}

func entityArgList() []cli.Argument {
	return []cli.Argument{
		&cli.StringArg{
			Name:      "entity",
			UsageText: "entity type (" + entityChoices() + ")",
		},
		&cli.StringArg{
			Name:      "id",
			UsageText: "entity id",
		},
	}
}

func compareFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "compare",
		Usage: "Correction id to diff against instead of the approved baseline",
	}
}

func pageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (text, markdown, csv, json)",
			Value:   "text",
		},
		&cli.BoolFlag{
			Name:    "markdown",
			Aliases: []string{"m"},
			Usage:   "Render markdown in the terminal",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write to a file instead of stdout",
		},
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output raw JSON",
	}
}

// correctionCommand handles reading and moderating a single correction
func correctionCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "correction",
		Aliases: []string{"c"},
		Usage:   "Inspect and moderate corrections",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show a correction with its diff, revisions and compare candidates",
				Arguments: []cli.Argument{idArg()},
				Flags:     append([]cli.Flag{compareFlag()}, pageFlags()...),
				Action:    r.CorrectionShow,
			},
			{
				Name:      "diff",
				Usage:     "Show only the field diff of a correction",
				Arguments: []cli.Argument{idArg()},
				Flags: []cli.Flag{
					compareFlag(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (text, markdown, json)",
						Value:   "text",
					},
				},
				Action: r.CorrectionDiff,
			},
			{
				Name:      "revisions",
				Usage:     "List the entity revisions a correction produced",
				Arguments: []cli.Argument{idArg()},
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.CorrectionRevisions,
			},
			{
				Name:      "history",
				Usage:     "List the corrections of an entity, newest first",
				Arguments: entityArgList(),
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (text, csv, json)",
						Value:   "text",
					},
				},
				Action: r.CorrectionHistory,
			},
			{
				Name:      "pending",
				Usage:     "Print the pending correction of an entity, if any",
				Arguments: entityArgList(),
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.CorrectionPending,
			},
			{
				Name:      "approve",
				Usage:     "Approve a pending correction",
				Arguments: []cli.Argument{idArg()},
				Action:    r.CorrectionApprove,
			},
			{
				Name:      "reject",
				Usage:     "Reject a pending correction",
				Arguments: []cli.Argument{idArg()},
				Action:    r.CorrectionReject,
			},
			{
				Name:      "open",
				Usage:     "Open the correction page in a browser",
				Arguments: []cli.Argument{idArg()},
				Flags: []cli.Flag{
					compareFlag(),
					&cli.BoolFlag{
						Name:  "print",
						Usage: "Print the URL instead of opening it",
					},
				},
				Action: r.CorrectionOpen,
			},
		},
	}
}

// previewCommand renders built-in scenarios offline
func previewCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "preview",
		Usage: "Render a built-in correction scenario without contacting the wiki",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "scenario",
				Aliases: []string{"s"},
				Usage:   "Scenario key (see --list)",
			},
			&cli.BoolFlag{
				Name:  "list",
				Usage: "List available scenarios",
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Open the scenario in the interactive viewer",
			},
			compareFlag(),
		}, pageFlags()...),
		Action: r.Preview,
	}
}

// exportCommand handles bulk exports
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export correction pages to files",
		Commands: []*cli.Command{
			{
				Name:      "history",
				Usage:     "Export every correction in an entity's history",
				Arguments: entityArgList(),
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (text, markdown, csv, json)",
						Value:   "markdown",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
						Value:   "./exports",
					},
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Number of concurrent workers (1-10)",
						Value:   4,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Maximum page loads per second (0 disables the limit)",
						Value: 5,
					},
				},
				Action: r.ExportHistory,
			},
		},
	}
}

// cacheCommand inspects the persisted query snapshots
func cacheCommand(r *Runner) *cli.Command {
	tagFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:    "tag",
			Aliases: []string{"t"},
			Usage:   "Restrict to one query tag (e.g. correction::diff)",
		}
	}
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect persisted query snapshots",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List stored snapshots",
				Flags:  []cli.Flag{tagFlag(), jsonFlag()},
				Action: r.CacheList,
			},
			{
				Name:   "clear",
				Usage:  "Delete stored snapshots",
				Flags:  []cli.Flag{tagFlag()},
				Action: r.CacheClear,
			},
		},
	}
}

// setupCommand handles configuration setup
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize the snapshot database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "status",
						Usage: "Show applied and pending migrations",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Revert the latest migration",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write the example configuration file",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "auth",
				Usage: "Store wiki credentials from a cURL command copied out of the browser",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command string (copied from browser DevTools)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to file containing cURL command",
					},
				},
				Action: r.SetupAuth,
			},
		},
	}
}

// apiCommand handles direct wiki API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the wiki API",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Direct GET, prints the JSON response",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "raw",
						Usage: "Print compact JSON",
					},
				},
				Action: r.APIGet,
			},
			{
				Name:      "post",
				Usage:     "Direct POST with JSON body",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// serveCommand exposes correction pages over HTTP
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Serve correction pages as JSON",
		Flags:  serveFlags(),
		Action: r.Serve,
	}
}

// tuiCommand launches the interactive viewer
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Usage:     "Browse a correction interactively",
		Arguments: []cli.Argument{idArg()},
		Flags:     []cli.Flag{compareFlag()},
		Action:    r.TUI,
	}
}
