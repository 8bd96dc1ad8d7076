package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bgunnarsson/bincast/internal/app"
	"github.com/bgunnarsson/bincast/internal/cast"
	"github.com/bgunnarsson/bincast/internal/config"
	"github.com/bgunnarsson/bincast/internal/logging"
)

type flags struct {
	driver   string
	dsn      string
	query    string
	cast     string
	connCast string
	timeZone string
	json     bool
	debug    bool
	save     bool
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "bincast [flags] [path]",
		Short: "Query a database and print typed rows",
		Long: `bincast connects to sqlite, postgres, mysql or mssql, decodes every column
through its type cast and shows the rows in a TUI, as a table or as JSON.

Type casts: "true", "false" or one of ` + strings.Join(cast.PresetNames(), ", ") + `.
--conn-cast applies to the whole connection, --cast to the query and wins.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			s, cfg, err := resolve(cfg, f, args)
			if err != nil {
				return err
			}
			if f.save {
				if err := config.Save(cfg); err != nil {
					return err
				}
				logging.Infof("saved settings for %s", logging.Mask(cfg.DSN))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			stdoutIsTTY := term.IsTerminal(int(os.Stdout.Fd()))
			if f.query != "" || f.json || !stdoutIsTTY {
				s.Color = stdoutIsTTY
				return app.RunNonInteractive(ctx, cmd.OutOrStdout(), s, f.query)
			}
			return app.RunInteractive(ctx, s)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.driver, "driver", "", "database driver: "+app.DriverList())
	fl.StringVar(&f.dsn, "dsn", "", "connection string (defaults to the path argument)")
	fl.StringVarP(&f.query, "query", "q", "", "SQL query to run in non-interactive mode")
	fl.StringVar(&f.cast, "cast", "", "query-scope type cast")
	fl.StringVar(&f.connCast, "conn-cast", "", "connection-scope type cast")
	fl.StringVar(&f.timeZone, "tz", "", "IANA zone temporal columns are read in (default UTC)")
	fl.BoolVar(&f.json, "json", false, "print rows as JSON")
	fl.BoolVar(&f.debug, "debug", false, "print debug messages")
	fl.BoolVar(&f.save, "save", false, "store driver, dsn, conn-cast and tz in the config file")
	return cmd
}

// resolve merges the config file with flags and builds the session. The
// merged config is returned for --save.
func resolve(cfg config.Config, f flags, args []string) (app.Session, config.Config, error) {
	cfg = merge(cfg, f, args)
	s, err := session(cfg, f)
	return s, cfg, err
}

// merge overlays flags and the path argument on cfg; flags win.
func merge(cfg config.Config, f flags, args []string) config.Config {
	if f.driver != "" {
		cfg.Driver = f.driver
	}
	switch {
	case f.dsn != "":
		cfg.DSN = f.dsn
	case len(args) == 1:
		cfg.DSN = args[0]
	}
	if f.connCast != "" {
		cfg.TypeCast = f.connCast
	}
	if f.timeZone != "" {
		cfg.TimeZone = f.timeZone
	}
	if f.debug {
		cfg.LogLevel = "debug"
	}
	return cfg
}

func session(cfg config.Config, f flags) (app.Session, error) {
	logging.SetDebug(cfg.LogLevel == "debug")

	if cfg.DSN == "" {
		return app.Session{}, fmt.Errorf("no database given: pass a path, --dsn or set dsn in the config file")
	}
	conn, err := cfg.Cast()
	if err != nil {
		return app.Session{}, fmt.Errorf("connection cast: %w", err)
	}
	query, err := cast.ParseSetting(f.cast)
	if err != nil {
		return app.Session{}, fmt.Errorf("query cast: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return app.Session{}, fmt.Errorf("time zone: %w", err)
	}

	s := app.Session{
		Driver: app.Driver(strings.ToLower(cfg.Driver)),
		DSN:    cfg.DSN,
		Query:  query,
		JSON:   f.json,
	}
	s.Conn.TypeCast = conn
	s.Conn.Location = loc
	return s, nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		logging.Errorf("%v", err)
		os.Exit(1)
	}
}
