package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/imrishuroy/bonzicart-checkout/internal/checkout"
	"github.com/imrishuroy/bonzicart-checkout/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "checkoutctl",
		Short: "BonziCart checkout utility",
		Long: `Offline tools for the BonziCart checkout.

Prices the configured cart, lists coupons, and runs field formatting and
section validation exactly as the checkout API does.`,
		SilenceUsage: true,
	}
	// Disable automatic completion command generation
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(newQuoteCmd(), newCouponsCmd(), newValidateCmd(), newFormatCmd())
	return root
}

// quoteCmd prices the cart
func newQuoteCmd() *cobra.Command {
	var coupon, outputFormat string
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Show the price details of the configured cart",
		Example: `  # Price the demo cart
  checkoutctl quote

  # With a coupon, as JSON
  checkoutctl quote --coupon SAVE10 --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cart, err := cfg.CheckoutCart()
			if err != nil {
				return err
			}
			rates, err := cfg.Rates()
			if err != nil {
				return err
			}

			var c checkout.Coupon
			if coupon != "" {
				if c, err = checkout.ResolveCoupon(coupon, cart.Subtotal(), rates.Shipping); err != nil {
					return err
				}
			}
			b := checkout.Quote(cart, c, rates)

			if outputFormat == "json" {
				return writeJSON(cmd.OutOrStdout(), b)
			}
			printQuote(cmd.OutOrStdout(), b)
			return nil
		},
	}
	cmd.Flags().StringVar(&coupon, "coupon", "", "Coupon code to apply")
	cmd.Flags().StringVar(&outputFormat, "format", "text", "Output format (text, json)")
	return cmd
}

func printQuote(w io.Writer, b checkout.Breakdown) {
	for _, it := range b.Items {
		fmt.Fprintf(w, "%-45s x%d  %8s", it.Name, it.Quantity, it.LineTotal.StringFixed(2))
		if it.PercentOff > 0 {
			fmt.Fprintf(w, "  (%d%% off)", it.PercentOff)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Price (%d items)  %s\n", b.ItemCount, b.Subtotal.StringFixed(2))
	if b.FreeShipping {
		fmt.Fprintln(w, "Delivery Charges  FREE")
	} else {
		fmt.Fprintf(w, "Delivery Charges  %s\n", b.Shipping.StringFixed(2))
	}
	fmt.Fprintf(w, "Tax               %s\n", b.Tax.StringFixed(2))
	fmt.Fprintf(w, "Platform Fee      %s\n", b.PlatformFee.StringFixed(2))
	if !b.Discount.IsZero() {
		fmt.Fprintf(w, "Coupon Discount  -%s\n", b.Discount.StringFixed(2))
	}
	fmt.Fprintf(w, "Total Amount      %s\n", b.Total.StringFixed(2))
	fmt.Fprintf(w, "You will save %s on this order\n", b.TotalSavings.StringFixed(2))
}

func newCouponsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "coupons",
		Short: "List the recognised coupon codes",
		Run: func(cmd *cobra.Command, args []string) {
			for _, c := range checkout.Coupons() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", c.Code, c.Description)
			}
		},
	}
}

// validateCmd runs section validation over field values
func newValidateCmd() *cobra.Command {
	var section string
	var values []string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate one section of the checkout form",
		Example: `  checkoutctl validate --section contact --set email=jane@example.com --set phone=5551234567
  checkoutctl validate --section contact --set hasGST=true --set companyName=Bonzi`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sec, err := checkout.ParseSection(section)
			if err != nil {
				return err
			}
			s := checkout.NewSession("checkoutctl", time.Now())
			for _, kv := range values {
				name, value, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("--set %q: want field=value", kv)
				}
				f, err := checkout.ParseField(name)
				if err != nil {
					return err
				}
				if err := s.SetField(f, value); err != nil {
					return err
				}
			}

			errs := checkout.Validate(sec, s.Form)
			if len(errs) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", sec.Title())
				return nil
			}
			fields := make([]string, 0, len(errs))
			for f := range errs {
				fields = append(fields, string(f))
			}
			sort.Strings(fields)
			for _, f := range fields {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", f, errs[checkout.Field(f)])
			}
			return fmt.Errorf("%s has %d invalid field(s)", sec.Title(), len(errs))
		},
	}
	cmd.Flags().StringVar(&section, "section", "contact", "Section to validate (contact, delivery, payment)")
	cmd.Flags().StringArrayVar(&values, "set", nil, "Field value as name=value (repeatable)")
	return cmd
}

func newFormatCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "format FIELD VALUE",
		Short:   "Show how an input value is normalised",
		Example: `  checkoutctl format cardNumber 4111111111111111`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := checkout.ParseField(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), checkout.Format(f, args[1]))
			return nil
		},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
