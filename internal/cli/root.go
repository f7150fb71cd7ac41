package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/todonotes/internal/config"
	"github.com/idilsaglam/todonotes/internal/logging"
	"github.com/idilsaglam/todonotes/internal/records"
	"github.com/idilsaglam/todonotes/internal/store"
	"github.com/idilsaglam/todonotes/internal/store/jsonstore"
	"github.com/idilsaglam/todonotes/internal/store/sqlitestore"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Backend    string
	Path       string
	LogLevel   string

	cfg config.Config
	now func() time.Time
}

// NewRootCommand creates the root command for the todo CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(time.Now)
}

func newRootCommand(now func() time.Time) *cobra.Command {
	opts := &RootOptions{now: now}

	cmd := &cobra.Command{
		Use:           "todo",
		Short:         "todo - a tiny to-do list",
		Long:          "Keep a list of to-do items with a title and a message, stored locally.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ./todo.toml)")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "storage backend (sqlite|json)")
	cmd.PersistentFlags().StringVar(&opts.Path, "path", "", "data file path")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")

	cmd.AddCommand(newAddCommand(opts))
	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newEditCommand(opts))
	cmd.AddCommand(newRemoveCommand(opts))
	cmd.AddCommand(newUICommand(opts))

	return cmd
}

// resolve loads the config file and applies flag overrides.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("backend") {
		cfg.Backend = strings.ToLower(o.Backend)
	}
	if cmd.Flags().Changed("path") {
		cfg.Path = o.Path
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = o.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg
	return nil
}

func (o *RootOptions) logger(cmd *cobra.Command) *log.Logger {
	return logging.New(cmd.ErrOrStderr(), o.cfg.LogLevel, o.cfg.LogFormat)
}

func openBackend(cfg config.Config) (store.Backend, error) {
	switch cfg.Backend {
	case config.BackendJSON:
		s, err := jsonstore.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendSQLite:
		s, err := sqlitestore.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// openStore opens the configured backend and loads the record store.
// The returned func closes the backend.
func (o *RootOptions) openStore(ctx context.Context, logger *log.Logger) (*records.Store, func(), error) {
	b, err := openBackend(o.cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", o.cfg.Backend, err)
	}
	s := records.New(ctx, b, records.WithLogger(logger))
	closeFn := func() {
		if err := b.Close(); err != nil {
			logger.Warn("close store", "err", err)
		}
	}
	return s, closeFn, nil
}
