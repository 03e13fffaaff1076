package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jonathan/job-tracker/internal/config"
	"github.com/jonathan/job-tracker/internal/observability"
	"github.com/jonathan/job-tracker/internal/session"
	"github.com/jonathan/job-tracker/internal/store"
	"github.com/jonathan/job-tracker/internal/store/postgres"
	"github.com/jonathan/job-tracker/internal/store/supabase"
	"github.com/jonathan/job-tracker/internal/tracker"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath  string
	store       string
	databaseURL string
	supabaseURL string
	supabaseKey string
	owner       string
	verbose     bool
	logLevel    string
}

// storeOpener opens the configured backend. Tests replace it with an in-memory store.
var storeOpener = openStore

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "tracker",
		Short:         "Job application tracker",
		Long:          "Track job applications (company, position, status, date, location, notes) per user, from the command line or over a REST API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to a JSON or YAML config file")
	flags.StringVar(&opts.store, "store", "", "Store backend: memory, postgres or supabase")
	flags.StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL)")
	flags.StringVar(&opts.supabaseURL, "supabase-url", "", "Supabase project URL (or SUPABASE_URL)")
	flags.StringVar(&opts.supabaseKey, "supabase-key", "", "Supabase service role key (or SUPABASE_SERVICE_KEY)")
	flags.StringVarP(&opts.owner, "owner", "u", "", "User ID whose applications are managed")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newListCmd(opts),
		newAddCmd(opts),
		newRemoveCmd(opts),
		newStatsCmd(opts),
		newProfileCmd(opts),
	)
	return root
}

// resolve merges flags over the config file over the environment.
func (o *globalOptions) resolve() (config.Config, error) {
	cfg := config.Config{
		Store:       o.store,
		DatabaseURL: o.databaseURL,
		SupabaseURL: o.supabaseURL,
		SupabaseKey: o.supabaseKey,
		OwnerID:     o.owner,
		LogLevel:    o.logLevel,
	}
	if o.verbose {
		cfg.LogLevel = "debug"
	}

	if o.configPath != "" {
		fileCfg, err := config.LoadConfig(o.configPath)
		if err != nil {
			return config.Config{}, err
		}
		if err := fileCfg.Validate(); err != nil {
			return config.Config{}, err
		}
		cfg = cfg.MergeWithDefaults(*fileCfg)
	}

	env, err := config.LoadServerEnv()
	if err != nil {
		return config.Config{}, err
	}
	cfg = cfg.MergeWithDefaults(env.AsConfig())

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	if err := cfg.RequireStore(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// logger builds the command logger. CLI commands stay quiet unless a level is requested.
func (o *globalOptions) logger(cmd *cobra.Command, cfg config.Config, fallback string) (*logrus.Logger, error) {
	level := fallback
	if o.verbose || o.logLevel != "" {
		level = cfg.LogLevel
	}
	return observability.NewLogger(cmd.ErrOrStderr(), level, cfg.LogFormat)
}

// openStore connects to the backend named by cfg.Store. The returned func releases it.
func openStore(ctx context.Context, cfg config.Config) (store.Client, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		db, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	case config.StoreSupabase:
		client, err := supabase.NewClient(supabase.Config{
			URL:        cfg.SupabaseURL,
			ServiceKey: cfg.SupabaseKey,
			Timeout:    30 * time.Second,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create supabase client: %w", err)
		}
		return client, func() {}, nil
	default:
		return store.NewMemory(), func() {}, nil
	}
}

// ownerSession returns the static identity for --owner.
func ownerSession(cfg config.Config) (session.Identity, error) {
	identity, ok := session.NewStatic(cfg.OwnerID, "").Current(context.Background())
	if !ok {
		return session.Identity{}, fmt.Errorf("--owner is required (or owner_id in the config file)")
	}
	return identity, nil
}

// commandEnv is what the list-manipulating commands work with.
type commandEnv struct {
	cfg      config.Config
	log      *logrus.Logger
	store    store.Client
	identity session.Identity
	close    func()
}

func (o *globalOptions) open(cmd *cobra.Command) (*commandEnv, error) {
	cfg, err := o.resolve()
	if err != nil {
		return nil, err
	}
	identity, err := ownerSession(cfg)
	if err != nil {
		return nil, err
	}
	log, err := o.logger(cmd, cfg, "warn")
	if err != nil {
		return nil, err
	}

	client, closeFn, err := storeOpener(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	return &commandEnv{cfg: cfg, log: log, store: client, identity: identity, close: closeFn}, nil
}

// loadManager builds a Manager for the owner and loads its list.
func (e *commandEnv) loadManager(ctx context.Context) (*tracker.Manager, error) {
	m := tracker.NewManager(e.store, tracker.WithLogger(e.log))
	if err := m.Load(ctx, e.identity.OwnerID); err != nil {
		return nil, err
	}
	return m, nil
}
