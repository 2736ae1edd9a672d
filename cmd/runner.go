package main

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/amjp/internal/ledger"
	"github.com/desertthunder/amjp/internal/library"
	"github.com/desertthunder/amjp/internal/models"
	"github.com/desertthunder/amjp/internal/repositories"
	"github.com/desertthunder/amjp/internal/services"
	"github.com/desertthunder/amjp/internal/shared"
	"github.com/desertthunder/amjp/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	configErr  error
	scripter   library.Scripter
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Scripter and HTTPClient are optional. When nil, commands build an osascript runner and a catalog client from the
// loaded configuration.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	ConfigErr  error // set when the file at ConfigPath exists but could not be loaded
	Scripter   library.Scripter
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
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

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		configErr:  opts.ConfigErr,
		scripter:   opts.Scripter,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		syncCommand, ledgerCommand, libraryCommand, catalogCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by the runner and everything it builds afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	if l != nil {
		r.logger = l
	}
}

// loadConfig resolves the configuration for cmd.
//
// A --config path other than the one loaded at startup is read from disk. An explicitly set path that does not
// exist is an error; the default path falls back to built-in settings only when the file is absent. --playlist
// stands in for library.playlist during validation.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	path := cmd.String("config")
	if path != "" && path == r.configPath && r.configErr != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrInvalidConfig, path, r.configErr)
	}
	if path != "" && path != r.configPath {
		if _, err := os.Stat(path); err == nil {
			config, err := shared.LoadConfig(path)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
			}
			r.config = config
			r.configPath = path
			r.configErr = nil
		} else if cmd.IsSet("config") {
			return nil, fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
		}
	}

	check := *r.config
	if name := cmd.String("playlist"); name != "" {
		check.Library.FetchAll = false
		check.Library.Playlist = name
	}
	if err := check.Validate(); err != nil {
		return nil, err
	}
	if err := r.configureLogger(cmd); err != nil {
		return nil, err
	}
	return r.config, nil
}

// configureLogger applies [log] settings. --verbose wins over the configured level.
func (r *Runner) configureLogger(cmd *cli.Command) error {
	if r.config.Log.File != "" {
		fileLogger, err := shared.NewFileLogger(r.config.Log.File)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		r.SetLogger(fileLogger)
	}

	level := shared.ParseLogLevel(r.config.Log.Level)
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)
	return nil
}

// scope picks the playlists a command covers: --playlist, then library.fetch_all, then library.playlist.
func (r *Runner) scope(cmd *cli.Command) models.Scope {
	if name := cmd.String("playlist"); name != "" {
		return models.NamedPlaylist(name)
	}
	if r.config.Library.FetchAll {
		return models.AllPlaylists()
	}
	return models.NamedPlaylist(r.config.Library.Playlist)
}

func (r *Runner) ledger() *ledger.Ledger {
	return ledger.New(r.config.Ledger.Path)
}

func (r *Runner) bridge() *library.Bridge {
	scripter := r.scripter
	if scripter == nil {
		scripter = library.NewOSAScript(
			library.WithBinary(r.config.Library.OSAScript),
			library.WithTimeout(r.config.Library.ScriptTimeout),
		)
	}

	return library.NewBridge(library.BridgeOpts{
		Scripter:     scripter,
		App:          r.config.Library.App,
		LaunchWait:   r.config.Library.LaunchWait,
		PollInterval: r.config.Library.PollInterval,
		Logger:       r.logger,
	})
}

// catalog builds the search client. An empty country keeps the configured storefront.
func (r *Runner) catalog(country string) *services.ITunesService {
	if country == "" {
		country = r.config.Catalog.Country
	}

	return services.NewITunesService(services.ITunesOpts{
		BaseURL: r.config.Catalog.BaseURL,
		Country: country,
		Entity:  r.config.Catalog.Entity,
		Limit:   r.config.Catalog.Limit,
		Timeout: r.config.Catalog.Timeout,
		Client:  r.httpClient,
		Logger:  shared.WithLogger(r.logger, "component", "catalog"),
	})
}

// openDatabase opens and migrates the history store. It returns a nil handle when no path is configured.
func (r *Runner) openDatabase() (*sql.DB, error) {
	if r.config.Database.Path == "" {
		return nil, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// requireDatabase is openDatabase for commands that cannot work without history.
func (r *Runner) requireDatabase() (*sql.DB, error) {
	if r.config.Database.Path == "" {
		return nil, fmt.Errorf("%w: database.path is not set", shared.ErrMissingConfig)
	}
	return r.openDatabase()
}

// newEngine wires a [tasks.SyncEngine] from the loaded configuration. db may be nil.
func (r *Runner) newEngine(db *sql.DB) (*tasks.SyncEngine, error) {
	opts := tasks.EngineOpts{
		Ledger:  r.ledger(),
		Library: r.bridge(),
		Catalog: r.catalog(""),
		Limiter: rate.NewLimiter(rate.Limit(r.config.Catalog.RateLimit), 1),
		Logger:  r.logger,
	}
	if db != nil {
		opts.History = repositories.NewHistory(db)
	}
	return tasks.NewSyncEngine(opts)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
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
