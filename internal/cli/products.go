package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/ErlanBelekov/credit-market/internal/client"
	"github.com/spf13/cobra"
)

func newProductsCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse or add catalog products",
	}
	cmd.AddCommand(newProductsListCommand(opts), newProductsAddCommand(opts))
	return cmd
}

func newProductsListCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := opts.client().ListProducts(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCREDITS")
			for _, p := range products {
				fmt.Fprintf(tw, "%d\t%s\t%d\n", p.ID, p.Name, p.Credits)
			}
			return tw.Flush()
		},
	}
}

func newProductsAddCommand(opts *options) *cobra.Command {
	var req client.AddProductRequest

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.client().AddProduct(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added product %d: %s (%d credits)\n", p.ID, p.Name, p.Credits)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "product name")
	cmd.Flags().StringVar(&req.Image, "image", "", "image URL")
	cmd.Flags().IntVar(&req.Credits, "credits", 0, "price in credits")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("image")
	_ = cmd.MarkFlagRequired("credits")
	return cmd
}
