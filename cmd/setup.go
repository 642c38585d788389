package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/multilink/internal/models"
	"github.com/desertthunder/multilink/internal/shared"
	"github.com/desertthunder/multilink/internal/ui"
	"github.com/urfave/cli/v3"
)

// Setup writes config.toml from the embedded template.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")
	if path == "" {
		path = r.configPath
	}
	if path == "" {
		return fmt.Errorf("%w: --output or --config", shared.ErrMissingArgument)
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)

	r.writePlain("%s %s\n", ui.OK("✓"), "Configuration written to "+path)
	r.writePlain("\nNext steps:\n")
	r.writePlain("1. Set telegram.token (or TELEGRAM_TOKEN)\n")
	r.writePlain("2. Optionally add Spotify, Yandex Music and MTS Music credentials\n")
	r.writePlain("3. Run 'multilink bot' to start polling\n")
	return nil
}

type serviceInfo struct {
	ID            models.ServiceID `json:"id"`
	Name          string           `json:"name"`
	Pattern       string           `json:"pattern"`
	Authenticated bool             `json:"authenticated"`
}

type authenticator interface {
	Authenticated() bool
}

// Services prints the recognized services in table order.
func (r *Runner) Services(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.pipeline(); err != nil {
		return err
	}

	infos := []serviceInfo{}
	for _, svc := range r.registry.Services() {
		d := svc.Descriptor()
		info := serviceInfo{ID: d.ID, Name: d.DisplayName}
		if d.Pattern != nil {
			info.Pattern = d.Pattern.String()
		}
		if a, ok := svc.(authenticator); ok {
			info.Authenticated = a.Authenticated()
		}
		infos = append(infos, info)
	}

	if cmd.Bool("json") {
		return r.writeJSON(infos, true)
	}

	r.writePlain("%s\n", ui.Title("Supported services"))
	for _, info := range infos {
		mode := ui.Warn("scrape + search page")
		if info.Authenticated {
			mode = ui.OK("api")
		}
		r.writePlain("%s %s\n", ui.Row(info.Name, string(info.ID)), mode)
		r.writePlain("  %s\n", ui.Help(info.Pattern))
	}
	return nil
}
