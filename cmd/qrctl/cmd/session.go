package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"qrattendance/internal/clock"
	"qrattendance/internal/session"
	"qrattendance/internal/store"
)

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionCreateCmd)
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the daily attendance session",
}

var sessionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Open today's session, or show it if it already exists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		clk, err := systemClock()
		if err != nil {
			return err
		}
		return withDB(cmd.Context(), func(db *store.DB) error {
			res, err := session.NewService(session.NewRepository(db.Client), clk).Create(cmd.Context())
			if err != nil {
				return err
			}
			if ok, err := writeStructured(cmd.OutOrStdout(), session.ToResponse(res.Session)); ok {
				return err
			}
			printSession(cmd, res)
			return nil
		})
	},
}

func printSession(cmd *cobra.Command, res session.CreateResult) {
	marker, state := okFmt("✓"), "created"
	if !res.Created {
		marker, state = infoFmt("-"), "already exists"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s session %s for %s\n  token: %s\n",
		marker, state, res.Session.Date.Format(clock.DateLayout), res.Session.Token)
}
