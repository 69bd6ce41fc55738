package cmd

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"qrattendance/internal/config"
	"qrattendance/internal/credential"
	"qrattendance/internal/store"
	"qrattendance/internal/user"
)

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
	rootCmd.AddCommand(passwordsCmd)
	passwordsCmd.AddCommand(passwordsMigrateCmd)

	userAddCmd.Flags().StringP("role", "r", string(user.RoleEmployee), "Role: ADMIN or EMPLOYEE")
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username> <password>",
	Short: "Create a user",
	Example: `  qrctl user add alice s3cret
  qrctl user add root s3cret --role ADMIN`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")
		return withDB(cmd.Context(), func(db *store.DB) error {
			resp, err := userService(db, cfg).Add(cmd.Context(), user.CreateUserRequest{
				Username: args[0],
				Password: args[1],
				Role:     role,
			})
			if err != nil {
				return err
			}
			if ok, err := writeStructured(cmd.OutOrStdout(), resp); ok {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s created %s (%s) id=%s\n", okFmt("✓"), resp.Username, resp.Role, resp.ID)
			return nil
		})
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(db *store.DB) error {
			users, err := userService(db, cfg).List(cmd.Context())
			if err != nil {
				return err
			}
			if ok, err := writeStructured(cmd.OutOrStdout(), users); ok {
				return err
			}
			printUsers(cmd.OutOrStdout(), users)
			return nil
		})
	},
}

var passwordsCmd = &cobra.Command{
	Use:   "passwords",
	Short: "Credential maintenance",
}

var passwordsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Rewrite plain-text passwords as bcrypt hashes",
	Long: `Hashes every stored password that is not already a bcrypt hash.
Running it more than once is safe; hashed values are left untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(db *store.DB) error {
			n, err := userService(db, cfg).MigratePasswords(cmd.Context())
			var partial *credential.PartialError
			if err != nil && !errors.As(err, &partial) {
				return err
			}
			resp := user.MigratePasswordsResponse{Migrated: n}
			if partial != nil {
				resp.Skipped = len(partial.Failed)
			}
			if ok, werr := writeStructured(cmd.OutOrStdout(), resp); ok {
				return errors.Join(werr, err)
			}
			printMigration(cmd.OutOrStdout(), resp)
			return err
		})
	},
}

func userService(db *store.DB, c config.App) user.Service {
	return user.NewService(user.NewRepository(db.Client), c.LegacyPlaintextLogin)
}

func printMigration(w io.Writer, resp user.MigratePasswordsResponse) {
	switch {
	case resp.Migrated == 0 && resp.Skipped == 0:
		fmt.Fprintln(w, infoFmt("-"), "all passwords are already hashed")
	case resp.Migrated > 0:
		fmt.Fprintf(w, "%s migrated %d password(s)\n", okFmt("✓"), resp.Migrated)
	}
	if resp.Skipped > 0 {
		fmt.Fprintf(w, "%s skipped %d account(s) that cannot be hashed\n", errFmt("!"), resp.Skipped)
	}
}

func printUsers(w io.Writer, users []user.UserResponse) {
	if len(users) == 0 {
		fmt.Fprintln(w, "No users found. Use 'qrctl user add' to create one.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "USERNAME\tROLE\tID")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", u.Username, u.Role, u.ID)
	}
	tw.Flush()
}
