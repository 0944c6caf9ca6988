package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-forum-backend/internal/domain"
	"github.com/tbourn/go-forum-backend/internal/repo"
)

func newUserCmd(a *app) *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Manage forum users",
	}

	var (
		name, first, last string
		admin             bool
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a user and print its id",
		Long: `Create a user and print its id. Authentication happens upstream; the
printed id is what the gateway sends as X-User-ID.

Examples:
  forumd user add --name alice
  forumd user add --name root --admin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			name = strings.TrimSpace(name)
			if name == "" {
				return errors.New("--name is required")
			}
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			u := &domain.User{DisplayName: name, FirstName: first, LastName: last, Role: domain.RoleUser}
			if admin {
				u.Role = domain.RoleAdmin
			}
			if err := repo.CreateUser(cmd.Context(), db, u); err != nil {
				return fmt.Errorf("create user %q: %w", name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", u.ID, u.DisplayName, u.Role)
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "unique display name")
	add.Flags().StringVar(&first, "first-name", "", "first name")
	add.Flags().StringVar(&last, "last-name", "", "last name")
	add.Flags().BoolVar(&admin, "admin", false, "grant the admin role")

	user.AddCommand(add)
	return user
}
