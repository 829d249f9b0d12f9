package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joelkehle/claimestimate/internal/claims"
)

func (a *app) loginCmd() *cobra.Command {
	var email, name string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Set the local identity that owns the policy book",
		Long: `Set the local identity. Nothing is verified: the email only selects which
policy book and user info are used.`,
		Args: cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			id, err := claims.NewIdentity(email, name)
			if err != nil {
				return err
			}
			if err := a.repo.SaveCurrentUser(cmd.Context(), id); err != nil {
				return err
			}
			if ok, err := encode(a.stdout, a.output, id); ok {
				return err
			}
			printSuccess(a.stdout, fmt.Sprintf("Logged in as %s <%s>", id.Name, id.Email))
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&name, "name", "", "Display name (defaults to the email's local part)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the local identity",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			if err := a.repo.ClearCurrentUser(cmd.Context()); err != nil {
				return err
			}
			printSuccess(a.stdout, "Logged out")
			return nil
		}),
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the local identity",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			id, err := a.currentUser(cmd.Context())
			if err != nil {
				return err
			}
			if ok, err := encode(a.stdout, a.output, id); ok {
				return err
			}
			fmt.Fprintf(a.stdout, "%s <%s>\n", id.Name, id.Email)
			return nil
		}),
	}
}

func (a *app) userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage the personal details of the logged-in user",
	}

	var name, dob string
	set := &cobra.Command{
		Use:   "set",
		Short: "Set name and date of birth",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := a.currentUser(ctx)
			if err != nil {
				return err
			}
			info, _, err := a.repo.LoadUserInfo(ctx, id.ID)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("name") {
				info.Name = name
			}
			if cmd.Flags().Changed("dob") {
				info.DOB = dob
			}
			if err := a.repo.SaveUserInfo(ctx, id.ID, info); err != nil {
				return err
			}
			printSuccess(a.stdout, "User info saved")
			return nil
		}),
	}
	set.Flags().StringVar(&name, "name", "", "Full name")
	set.Flags().StringVar(&dob, "dob", "", "Date of birth (YYYY-MM-DD)")

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the stored user info",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := a.currentUser(ctx)
			if err != nil {
				return err
			}
			info, _, err := a.repo.LoadUserInfo(ctx, id.ID)
			if err != nil {
				return err
			}
			if ok, err := encode(a.stdout, a.output, info); ok {
				return err
			}
			fmt.Fprintf(a.stdout, "name: %s\ndob:  %s\n", info.Name, info.DOB)
			return nil
		}),
	}

	cmd.AddCommand(set, show)
	return cmd
}
