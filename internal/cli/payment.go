package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storekit/pkg/config"
	"github.com/matzehuels/storekit/pkg/errors"
	"github.com/matzehuels/storekit/pkg/payment"
	"github.com/matzehuels/storekit/pkg/sales"
)

// paymentOpts holds the flags shared by the payment subcommands.
type paymentOpts struct {
	configPath string // TOML store configuration
	store      string // store code used for scope resolution
	total      string // cart grand total (check only)
	currency   string // ISO 4217 code (check only)
	noCart     bool   // evaluate without a cart (check only)
}

// loadMethod reads the store configuration and binds the free method to
// the selected store scope.
func (o *paymentOpts) loadMethod() (*payment.Method, error) {
	store, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	cfg, err := payment.LoadConfig(store.Scope(o.store))
	if err != nil {
		return nil, err
	}
	return payment.NewMethod(cfg, sales.NewCatalog(store.OrderStatuses())), nil
}

// paymentCommand creates the payment command.
func (c *CLI) paymentCommand() *cobra.Command {
	opts := paymentOpts{configPath: defaultConfigFile, store: config.DefaultScope}

	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Evaluate the free payment method",
		Long: `Evaluate the zero-total ("free") payment method against a store configuration.

Examples:
  storekit payment check --config store.toml --store default --total 0.004
  storekit payment check --total 0 --currency JPY
  storekit payment action --store eu`,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", opts.configPath, "store configuration file (TOML)")
	cmd.PersistentFlags().StringVarP(&opts.store, "store", "s", opts.store, "store code")
	_ = cmd.RegisterFlagCompletionFunc("store", completeStores(&opts.configPath))

	cmd.AddCommand(c.paymentCheckCommand(&opts))
	cmd.AddCommand(c.paymentActionCommand(&opts))

	return cmd
}

// paymentCheckCommand creates the "payment check" subcommand.
func (c *CLI) paymentCheckCommand(opts *paymentOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report whether the free method is available for a cart total",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := opts.loadMethod()
			if err != nil {
				return err
			}

			var cart *payment.Cart
			if !opts.noCart {
				if opts.total == "" {
					return errors.New(errors.ErrCodeInvalidInput, "--total is required unless --no-cart is set")
				}
				cart, err = payment.NewCart(opts.total, opts.currency)
				if err != nil {
					return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid total %q", opts.total)
				}
			}

			c.Logger.Debug("evaluating free payment", "store", opts.store, "active", m.Config.Active)

			printKeyValue("Method", m.Title())
			printKeyValue("Store", opts.store)
			printKeyValue("Enabled", yesNo(m.IsAvailableInConfig()))
			if cart != nil {
				printKeyValue("Grand total", cart.RoundedTotal().StringFixed(payment.Precision(cart.Currency)))
			}

			if m.IsAvailable(cart) {
				printSuccess("Free payment is available")
			} else {
				printWarning("Free payment is not available")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.total, "total", "t", "", "cart grand total (e.g. 0.004)")
	cmd.Flags().StringVar(&opts.currency, "currency", "", "currency code for rounding (default two decimals)")
	cmd.Flags().BoolVar(&opts.noCart, "no-cart", false, "evaluate without a cart")

	return cmd
}

// paymentActionCommand creates the "payment action" subcommand.
func (c *CLI) paymentActionCommand(opts *paymentOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "action",
		Short: "Print the payment action the order pipeline runs for free orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := opts.loadMethod()
			if err != nil {
				return err
			}

			printKeyValue("Order status", orNone(m.Config.OrderStatus))
			printKeyValue("New statuses", orNone(strings.Join(m.Catalog.StateStatuses(sales.StateNew), ", ")))
			action, ok := m.PaymentAction()
			if !ok {
				printInfo("No payment action: status %q belongs to the new state", m.Config.OrderStatus)
				return nil
			}
			printKeyValue("Action", orNone(action))
			return nil
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
