package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/correx/internal/query"
	"github.com/desertthunder/correx/internal/services"
	"github.com/desertthunder/correx/internal/shared"
	"github.com/desertthunder/correx/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	api         *services.APIService
	corrections services.CorrectionAPI
	moderator   services.Moderator
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
	cache       *query.Cache
	engine      *tasks.CorrectionEngine
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Corrections and Moderator default to a [services.CorrectionService] over API. Store enables snapshot persistence.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	API         *services.APIService
	Corrections services.CorrectionAPI
	Moderator   services.Moderator
	HTTPClient  *http.Client
	Logger      *log.Logger
	Output      io.Writer
	Store       query.Store
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
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
		opts.HTTPClient = http.DefaultClient
	}
	if opts.API == nil {
		opts.API = services.NewAPIService(opts.Config.API, opts.HTTPClient, shared.WithLogger(opts.Logger, "component", "api"))
	}
	if opts.Corrections == nil || opts.Moderator == nil {
		svc := services.NewCorrectionService(opts.API)
		if opts.Corrections == nil {
			opts.Corrections = svc
		}
		if opts.Moderator == nil {
			opts.Moderator = svc
		}
	}

	r := &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		api:         opts.API,
		corrections: opts.Corrections,
		moderator:   opts.Moderator,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
	}
	r.cache = query.New(query.CacheOpts{
		Store:  opts.Store,
		TTL:    opts.Config.Cache.TTL.Duration,
		Logger: shared.WithLogger(opts.Logger, "component", "cache"),
	})
	r.engine = r.newEngine(r.cache, r.corrections, r.moderator)
	return r
}

func (r *Runner) newEngine(cache *query.Cache, api services.CorrectionAPI, moderator services.Moderator) *tasks.CorrectionEngine {
	return tasks.NewCorrectionEngine(tasks.EngineOpts{
		Cache:     cache,
		API:       api,
		Moderator: moderator,
		Logger:    shared.WithLogger(r.logger, "component", "engine"),
	})
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Close stops in-flight fetches.
func (r *Runner) Close() error {
	return r.cache.Close()
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		correctionCommand, previewCommand, exportCommand, cacheCommand, setupCommand, apiCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
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

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
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

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
