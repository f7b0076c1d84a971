package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openpress/quill/internal/api"
	"github.com/openpress/quill/internal/roles"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.session.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Printf("Logged in as %s\n", user.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.session.Register(cmd.Context(), api.RegisterRequest{
				Username: username,
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Registered and logged in as %s\n", user.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "account username")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.Initialize(cmd.Context())
			a.session.Logout(cmd.Context())
			fmt.Println("Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.Initialize(cmd.Context())
			user := a.session.User()
			if user == nil {
				fmt.Println("Not logged in")
				return nil
			}

			if err := printJSON(user); err != nil {
				return err
			}
			fmt.Printf("admin: %v, author: %v\n", roles.IsAdmin(user), roles.IsAuthor(user))
			return nil
		},
	}
}

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage your profile",
	}

	var username, email, bio string
	update := &cobra.Command{
		Use:   "update",
		Short: "Update your profile fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.Initialize(cmd.Context())

			fields := map[string]interface{}{}
			if username != "" {
				fields["username"] = username
			}
			if email != "" {
				fields["email"] = email
			}
			if cmd.Flags().Changed("bio") {
				fields["bio"] = bio
			}
			if len(fields) == 0 {
				return fmt.Errorf("nothing to update")
			}

			if err := a.session.UpdateProfile(cmd.Context(), fields); err != nil {
				return err
			}
			return printJSON(a.session.User())
		},
	}
	update.Flags().StringVar(&username, "username", "", "new username")
	update.Flags().StringVar(&email, "email", "", "new email")
	update.Flags().StringVar(&bio, "bio", "", "new bio")

	cmd.AddCommand(update)
	return cmd
}
