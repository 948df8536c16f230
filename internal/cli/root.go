// Package cli implements the market terminal client.
package cli

import (
	"os"
	"time"

	"github.com/ErlanBelekov/credit-market/internal/client"
	"github.com/spf13/cobra"
)

type options struct {
	apiURL  string
	token   string
	timeout time.Duration
}

func (o *options) client() *client.Client {
	return client.New(o.apiURL, client.WithToken(o.token), client.WithTimeout(o.timeout))
}

// NewRootCommand builds the market command tree. MARKET_API and
// MARKET_TOKEN provide flag defaults.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "market",
		Short:         "Terminal client for the credit marketplace",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	apiDefault := os.Getenv("MARKET_API")
	if apiDefault == "" {
		apiDefault = "http://localhost:8080"
	}
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api", apiDefault, "marketplace API base URL")
	cmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("MARKET_TOKEN"), "bearer token from signin")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", client.DefaultTimeout, "per-request timeout")

	cmd.AddCommand(
		newSignupCommand(opts),
		newSigninCommand(opts),
		newRoleCommand(opts),
		newProductsCommand(opts),
		newShopCommand(opts),
	)
	return cmd
}
