// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// botCommand runs the bot with long polling.
func botCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "bot",
		Usage:  "Run the Telegram bot with long polling",
		Action: r.Bot,
	}
}

// webhookCommand runs the bot behind the HTTP server.
func webhookCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "webhook",
		Usage: "Register the webhook and serve Telegram updates over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (defaults to server.host:server.port)",
			},
		},
		Action: r.Webhook,
	}
}

// resolveCommand runs the pipeline once and prints the result.
func resolveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Resolve a track link into links on the other services",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "text",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "markdown",
				Usage: "Print the reply exactly as the bot would send it",
			},
		},
		Action: r.Resolve,
	}
}

// servicesCommand lists the recognized services.
func servicesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "services",
		Aliases: []string{"ls"},
		Usage:   "List supported services, their link patterns and credential status",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Services,
	}
}

// setupCommand writes a starter configuration file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Write a config.toml from the built-in template",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Where to write the file (defaults to --config)",
			},
		},
		Action: r.Setup,
	}
}
