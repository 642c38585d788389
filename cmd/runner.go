package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/multilink/internal/formatter"
	"github.com/desertthunder/multilink/internal/services"
	"github.com/desertthunder/multilink/internal/shared"
	"github.com/desertthunder/multilink/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	preset     bool
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	registry   *services.Registry
	engine     *tasks.Engine
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A non-nil Config is used as-is and Before will not read config files or the environment.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Registry   *services.Registry
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	preset := opts.Config != nil
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = services.NewHTTPClient(0)
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		preset:     preset,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		registry:   opts.Registry,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		botCommand, webhookCommand, resolveCommand, servicesCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before resolves configuration once for the whole process and applies the log level.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	if !r.preset {
		config, err := shared.ResolveConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	}

	level := r.config.Log.Level
	if override := cmd.String("log-level"); override != "" {
		level = override
	}
	if err := shared.ApplyLogLevel(r.logger, level); err != nil {
		return ctx, fmt.Errorf("%w: log level %q", err, level)
	}
	return ctx, nil
}

// dialect returns the configured Markdown dialect.
func (r *Runner) dialect() (formatter.Dialect, error) {
	return formatter.ParseDialect(r.config.Telegram.Markdown)
}

// pipeline builds the registry and engine on first use.
func (r *Runner) pipeline() (*tasks.Engine, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	d, err := r.dialect()
	if err != nil {
		return nil, err
	}

	if r.registry == nil {
		r.registry = services.NewDefaultRegistry(r.config.Credentials, services.ServiceOpts{
			HTTPClient: r.httpClient,
			Logger:     r.logger,
		})
	}

	r.engine = tasks.NewEngine(tasks.EngineOpts{
		Registry:       r.registry,
		Formatter:      formatter.New(r.registry.Descriptors(), d),
		Logger:         r.logger,
		ExtractTimeout: r.config.Pipeline.ExtractTimeout.Duration,
		SearchTimeout:  r.config.Pipeline.SearchTimeout.Duration,
	})
	return r.engine, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
