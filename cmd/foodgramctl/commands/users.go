package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/foodgramapp/foodgram-server/internal/di/providers"
	"github.com/foodgramapp/foodgram-server/internal/domain"
	"github.com/foodgramapp/foodgram-server/internal/service"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user roles",
}

var usersPromoteCmd = &cobra.Command{
	Use:   "promote <id-or-email>",
	Short: "Grant the admin role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetRole(cmd, args[0], domain.RoleAdmin)
	},
}

var usersDemoteCmd = &cobra.Command{
	Use:   "demote <id-or-email>",
	Short: "Revoke the admin role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetRole(cmd, args[0], domain.RoleUser)
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersPromoteCmd, usersDemoteCmd)
}

func runSetRole(cmd *cobra.Command, ref string, role domain.Role) error {
	return withInjector(func(i do.Injector) error {
		storeHandle := do.MustInvoke[*providers.StoreHandle](i)
		users := do.MustInvoke[*service.UserService](i)

		id, err := resolveUserID(cmd.Context(), storeHandle, ref)
		if err != nil {
			return err
		}

		user, err := users.SetRole(cmd.Context(), domain.System(), id, role)
		if err != nil {
			return err
		}

		return printResult(cmd.OutOrStdout(), user, func(w io.Writer) {
			fmt.Fprintf(w, "%s (id %d) is now %s\n", user.Username, user.ID, user.Role)
		})
	})
}

// resolveUserID accepts a numeric ID or an email address.
func resolveUserID(ctx context.Context, st *providers.StoreHandle, ref string) (int64, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return id, nil
	}
	user, err := st.GetUserByEmail(ctx, ref)
	if err != nil {
		return 0, fmt.Errorf("user %q: %w", ref, err)
	}
	return user.ID, nil
}
