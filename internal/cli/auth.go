package cli

import (
	"fmt"

	"github.com/ErlanBelekov/credit-market/internal/client"
	"github.com/spf13/cobra"
)

func newSignupCommand(opts *options) *cobra.Command {
	var req client.SignupRequest

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := opts.client().Signup(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account created for %s (role %s)\n", u.Email, u.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "password (6-20 characters)")
	cmd.Flags().StringVarP(&req.UserName, "name", "n", "", "display name")
	cmd.Flags().StringVar(&req.Role, "role", "", "requested role")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newSigninCommand(opts *options) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in and print a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.client().Signin(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, s.Message)
			fmt.Fprintf(out, "export MARKET_TOKEN=%s\n", s.Token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRoleCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "role",
		Short: "Show the role of the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := opts.client().GetRole(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), role)
			return nil
		},
	}
}
