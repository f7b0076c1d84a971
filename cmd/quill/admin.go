package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openpress/quill/internal/roles"
)

func newUsersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Administer user accounts",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if parent := cmd.Root().PersistentPreRunE; parent != nil {
				if err := parent(cmd, args); err != nil {
					return err
				}
			}
			a.session.Initialize(cmd.Context())
			if !roles.IsAdmin(a.session.User()) {
				return fmt.Errorf("admin privileges required")
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all user profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := a.session.Client().ListProfiles(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(profiles)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-role <profile-id> <regular|author|admin>",
		Short: "Change a user's role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := argID(args)
			if err != nil {
				return err
			}
			profile, err := a.session.Client().ChangeUserType(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			return printJSON(profile)
		},
	})

	return cmd
}
