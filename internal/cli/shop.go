package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ErlanBelekov/credit-market/internal/cart"
	"github.com/ErlanBelekov/credit-market/internal/client"
	"github.com/spf13/cobra"
)

const defaultCredits = 1000

func newShopCommand(opts *options) *cobra.Command {
	var credits int

	cmd := &cobra.Command{
		Use:   "shop",
		Short: "Interactive shopping session",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			var remote []cart.Item
			products, err := opts.client().ListProducts(cmd.Context())
			if err != nil {
				fmt.Fprintf(out, "Could not fetch the catalog (%v); showing built-in items only.\n", err)
			} else {
				remote = client.CartItems(products)
			}

			state := cart.New(credits, cart.SeedCatalog(), remote)
			return RunShop(cmd.InOrStdin(), out, state)
		},
	}

	cmd.Flags().IntVar(&credits, "credits", defaultCredits, "starting credit balance")
	return cmd
}

const shopHelp = `Commands:
  list [term]   items for sale, optionally filtered by name
  buy <id>      buy an item
  resell <id>   resell an owned item at 80% of its price
  market        secondhand items
  buy2 <id>     buy a secondhand item
  cart          owned items and their total
  credits       current balance
  help          this text
  quit          leave the shop`

// RunShop reads commands from in until quit or EOF. Failed operations are
// reported and leave the state untouched.
func RunShop(in io.Reader, out io.Writer, state *cart.State) error {
	fmt.Fprintf(out, "Welcome! You have %d credits. Type help for commands.\n", state.Credits())

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		verb, arg := fields[0], strings.Join(fields[1:], " ")

		switch verb {
		case "quit", "exit":
			fmt.Fprintln(out, "Bye.")
			return nil
		case "help":
			fmt.Fprintln(out, shopHelp)
		case "list":
			printItems(out, state.Filter(arg), "Nothing for sale.")
		case "market":
			printItems(out, state.Resale(), "The secondhand market is empty.")
		case "cart":
			printItems(out, state.Owned(), "Your cart is empty.")
			fmt.Fprintf(out, "Total: %d credits\n", state.OwnedTotal())
		case "credits":
			fmt.Fprintf(out, "%d credits\n", state.Credits())
		case "buy", "resell", "buy2":
			if arg == "" {
				fmt.Fprintf(out, "Usage: %s <id>\n", verb)
				continue
			}
			transact(out, state, verb, arg)
		default:
			fmt.Fprintf(out, "Unknown command %q. Type help for commands.\n", verb)
		}
	}
}

func transact(out io.Writer, state *cart.State, verb, id string) {
	var (
		it  cart.Item
		err error
	)
	switch verb {
	case "buy":
		it, err = state.Buy(id)
	case "resell":
		it, err = state.Resell(id)
	case "buy2":
		it, err = state.BuySecondHand(id)
	}

	switch {
	case errors.Is(err, cart.ErrInsufficientCredits):
		fmt.Fprintf(out, "Not enough credits! You have %d.\n", state.Credits())
	case err != nil:
		fmt.Fprintf(out, "Cannot %s %s: %v\n", verb, id, err)
	case verb == "resell":
		fmt.Fprintf(out, "Listed %s for %d credits. Balance: %d\n", it.Name, it.Price, state.Credits())
	default:
		fmt.Fprintf(out, "Bought %s for %d credits. Balance: %d\n", it.Name, it.Price, state.Credits())
	}
}

func printItems(out io.Writer, items []cart.Item, empty string) {
	if len(items) == 0 {
		fmt.Fprintln(out, empty)
		return
	}
	for _, it := range items {
		fmt.Fprintf(out, "  %-8s %-28s %6d credits\n", it.ID, it.Name, it.Price)
	}
}
