package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"qrattendance/internal/store"
)

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaMigrateCmd)
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Manage the database schema",
}

var schemaMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables and constraints if they do not exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(db *store.DB) error {
			if err := db.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), okFmt("✓"), "schema is up to date")
			return nil
		})
	},
}
