package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotsearch/internal/endpoint"
	"github.com/desertthunder/spotsearch/internal/models"
	"github.com/desertthunder/spotsearch/internal/query"
	"github.com/desertthunder/spotsearch/internal/services"
	"github.com/desertthunder/spotsearch/internal/shared"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/urfave/cli/v3"
)

// catalog is the client surface used by the commands. [services.Client] implements it.
type catalog interface {
	services.Searcher
	Plan(ctx context.Context, input string, opts services.SearchOptions) (query.Descriptor, endpoint.Target, error)
	Batch(ctx context.Context, inputs []string, opts services.SearchOptions, concurrency int) ([]services.BatchResult, error)
}

var _ catalog = (*services.Client)(nil)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	client     catalog
	httpClient *http.Client
	registry   *prometheus.Registry
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A nil Config is loaded from the --config flag when the app starts. A nil Client is built from the config the
// first time a command needs it.
type RunnerOpts struct {
	Config     *shared.Config
	Client     catalog
	HTTPClient *http.Client
	Registry   *prometheus.Registry
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	return &Runner{
		config:     opts.Config,
		client:     opts.Client,
		httpClient: opts.HTTPClient,
		registry:   opts.Registry,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		searchCommand, lookupCommand, batchCommand, exportCommand, diffCommand, downloadCommand, configCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by the runner and any client it builds afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// setup loads configuration and applies the log level before any command runs.
func (r *Runner) setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if r.config == nil {
		path := cmd.String("config")
		if _, err := os.Stat(path); err == nil {
			config, err := shared.LoadConfig(path)
			if err != nil {
				return ctx, err
			}
			r.config = config
		} else {
			r.logger.Debug("config file not found, using defaults", "path", path)
			r.config = shared.DefaultConfig()
		}
		r.config.ApplyEnv()
	}

	level := r.config.Log.Level
	if cmd.IsSet("log-level") {
		level = cmd.String("log-level")
	}
	if level != "" {
		ll, err := shared.ParseLogLevel(level)
		if err != nil {
			return ctx, err
		}
		shared.SetLogLevel(r.logger, ll)
	}

	return ctx, nil
}

// teardown prints collected client metrics when --metrics is set.
func (r *Runner) teardown(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("metrics") {
		return nil
	}
	return r.writeMetrics(os.Stderr)
}

// catalog returns the configured client, building it on first use.
func (r *Runner) catalog() (catalog, error) {
	if r.client != nil {
		return r.client, nil
	}
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}

	client, err := services.NewFromConfig(r.config, r.logger, r.registry)
	if err != nil {
		return nil, err
	}
	r.client = client
	return client, nil
}

// searchOptions merges command flags over the [search] config defaults.
func (r *Runner) searchOptions(cmd *cli.Command) (services.SearchOptions, error) {
	var opts services.SearchOptions
	defaults := shared.DefaultConfig().Search
	if r.config != nil {
		defaults = r.config.Search
		opts.ResolveTitles = r.config.API.ResolveTrackTitles
	}

	types := defaults.Types
	if cmd.IsSet("type") {
		types = cmd.StringSlice("type")
	}
	for _, raw := range types {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t == "" {
				continue
			}
			kind, err := models.ParseEntityType(t)
			if err != nil {
				return opts, err
			}
			opts.Types = append(opts.Types, kind)
		}
	}

	for _, f := range cmd.StringSlice("filter") {
		name, value, ok := strings.Cut(f, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return opts, fmt.Errorf("%w: filter %q must look like name:value", shared.ErrInvalidArgument, f)
		}
		opts.Filters = append(opts.Filters, query.Filter{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)})
	}

	opts.Market = defaults.Market
	if cmd.IsSet("market") {
		opts.Market = cmd.String("market")
	}

	if cmd.IsSet("limit") {
		opts.Limit = endpoint.Int(cmd.Int("limit"))
	} else if defaults.Limit > 0 {
		opts.Limit = endpoint.Int(defaults.Limit)
	}
	if cmd.IsSet("offset") {
		opts.Offset = endpoint.Int(cmd.Int("offset"))
	}
	if cmd.IsSet("resolve-titles") {
		opts.ResolveTitles = cmd.Bool("resolve-titles")
	}

	return opts, nil
}

// readInputs collects inputs from positional arguments and from the --file flag, one per line.
//
// Blank lines and lines starting with # are skipped.
func readInputs(cmd *cli.Command) ([]string, error) {
	inputs := cmd.Args().Slice()

	if path := cmd.String("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}
		for line := range strings.Lines(string(data)) {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			inputs = append(inputs, line)
		}
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no inputs given", shared.ErrMissingArgument)
	}
	return inputs, nil
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

// writeMetrics renders the registry in the Prometheus text exposition format.
func (r *Runner) writeMetrics(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	var errs []error
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
