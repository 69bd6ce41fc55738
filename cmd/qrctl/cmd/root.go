// Package cmd implements the qrctl admin commands.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"qrattendance/internal/clock"
	"qrattendance/internal/config"
	"qrattendance/internal/logging"
	"qrattendance/internal/store"
)

var (
	// Version is set at build time
	Version = "0.1.0"

	outputFormat string
	databaseURL  string
	timeZone     string

	cfg config.App
)

var (
	okFmt   = color.New(color.FgGreen).SprintFunc()
	infoFmt = color.New(color.FgYellow).SprintFunc()
	errFmt  = color.New(color.FgRed, color.Bold).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:   "qrctl",
	Short: "Admin CLI for the QR attendance service",
	Long: `qrctl talks to the attendance database directly. It can apply the
schema, manage users, migrate legacy passwords and open today's session
without going through the HTTP API.

Connection settings come from the same environment variables as the
server (DATABASE_URL, APP_TIMEZONE) and can be overridden with flags.`,
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if databaseURL != "" {
			cfg.DatabaseURL = databaseURL
		}
		if timeZone != "" {
			cfg.TimeZone = timeZone
		}
		if _, err := logging.New(cfg.Env); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres connection string (env: DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&timeZone, "timezone", "", "Zone that defines today (env: APP_TIMEZONE)")
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), errFmt("error:"), err)
	}
	_ = zap.L().Sync()
	return err
}

// withDB opens the database for the duration of fn.
func withDB(ctx context.Context, fn func(db *store.DB) error) error {
	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		db.Close()
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	return fn(db)
}

func systemClock() (clock.Clock, error) {
	clk, err := clock.NewSystem(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", cfg.TimeZone, err)
	}
	return clk, nil
}

// writeStructured handles -o json and -o yaml; it reports false for table output.
func writeStructured(w io.Writer, data any) (bool, error) {
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(data)
	case "yaml":
		out, err := yaml.Marshal(data)
		if err != nil {
			return true, err
		}
		_, err = w.Write(out)
		return true, err
	default:
		return false, nil
	}
}
