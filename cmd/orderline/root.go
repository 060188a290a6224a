package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cognicore/orderline/internal/logging"
	"github.com/cognicore/orderline/pkg/orderline"
	"github.com/cognicore/orderline/pkg/orderline/config"
	"github.com/cognicore/orderline/pkg/orderline/index"
	"github.com/cognicore/orderline/pkg/orderline/internalerr"
	"github.com/cognicore/orderline/pkg/orderline/menu"
	"github.com/cognicore/orderline/pkg/orderline/menu/htmlmenu"
	"github.com/cognicore/orderline/pkg/orderline/store"
	"github.com/cognicore/orderline/pkg/orderline/store/memstore"
	"github.com/cognicore/orderline/pkg/orderline/store/postgres"
	"github.com/cognicore/orderline/pkg/orderline/store/sqlite"
)

// cli carries the state shared by every subcommand of one root command.
type cli struct {
	v      *viper.Viper
	logger *logging.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:   "orderline",
		Short: "Matches spoken food orders against restaurant menus",
		Long: `orderline turns the transcript of a spoken food order into a priced order line:
the menu item, the modifiers that were asked for, and the required choices
that are still open.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.logger == nil {
				return nil
			}
			return c.logger.Close()
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default is $HOME/.orderline.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")
	pf.String("log-file", "", "write logs to this file with size rotation instead of stderr")
	pf.Int("log-max-size-mb", 64, "rotate the log file after this many megabytes")
	pf.Int("log-max-backups", 0, "rotated log files to keep (0 keeps all)")
	pf.Int("log-max-age-days", 0, "days to keep rotated log files (0 keeps all)")
	pf.String("fillers", "", "YAML filler word list (terms:)")
	pf.String("params", "", "YAML matching thresholds")
	pf.Int("cache-size", index.DefaultCacheSize, "number of menu indexes kept in memory")
	pf.String("db", "", "SQLite menu database path")
	pf.String("postgres-dsn", "", "Postgres menu database DSN, takes precedence over --db")
	_ = c.v.BindPFlags(pf)

	root.AddCommand(newParseCmd(c), newImportCmd(c), newServeCmd(c))
	return root
}

// init reads the config file and environment, then builds the logger.
func (c *cli) init() error {
	if cfg := c.v.GetString("config"); cfg != "" {
		c.v.SetConfigFile(cfg)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			c.v.AddConfigPath(home)
		}
		c.v.SetConfigType("yaml")
		c.v.SetConfigName(".orderline")
	}

	c.v.SetEnvPrefix("ORDERLINE")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("%w: read config: %v", internalerr.ErrInvalidConfig, err)
		}
	}

	logger, err := logging.New(logging.Config{
		Level:      c.v.GetString("log-level"),
		Format:     c.v.GetString("log-format"),
		File:       c.v.GetString("log-file"),
		MaxSizeMB:  c.v.GetInt("log-max-size-mb"),
		MaxBackups: c.v.GetInt("log-max-backups"),
		MaxAgeDays: c.v.GetInt("log-max-age-days"),
	})
	if err != nil {
		return err
	}
	c.logger = logger
	if f := c.v.ConfigFileUsed(); f != "" {
		c.logger.Debug("using config file", "path", f)
	}
	return nil
}

func (c *cli) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.logger.Logger
}

// persistent reports whether a database backs the menu store.
func (c *cli) persistent() bool {
	return c.v.GetString("postgres-dsn") != "" || c.v.GetString("db") != ""
}

func (c *cli) openStore(ctx context.Context) (store.Store, error) {
	if dsn := c.v.GetString("postgres-dsn"); dsn != "" {
		return postgres.Open(ctx, dsn)
	}
	if path := c.v.GetString("db"); path != "" {
		return sqlite.OpenSQLite(ctx, path)
	}
	return memstore.New(), nil
}

// buildEngine loads the configured components and opens the menu store.
func (c *cli) buildEngine(ctx context.Context) (*orderline.Engine, func(), error) {
	loader := config.Loader{
		FillersPath: c.v.GetString("fillers"),
		ParamsPath:  c.v.GetString("params"),
		CacheSize:   c.v.GetInt("cache-size"),
	}

	components, err := loader.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	st, err := c.openStore(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	engine := orderline.New(orderline.Options{
		Cache:      components.Cache,
		Normalizer: components.Normalizer,
		Params:     components.Params,
		Store:      st,
		Logger:     c.log(),
	})

	cleanup := func() {
		if err := engine.Close(); err != nil {
			c.log().Warn("close store", "err", err)
		}
	}

	return engine, cleanup, nil
}

// loadMenuFile reads a YAML, JSON or annotated HTML menu. A non-empty key
// overrides the key stored in the file.
func loadMenuFile(path, key string) (*menu.Menu, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return htmlmenu.Parse(f, key)
	}

	m, err := config.LoadMenu(path)
	if err != nil {
		return nil, err
	}
	if key != "" {
		m.Key = key
	}
	return m, nil
}
