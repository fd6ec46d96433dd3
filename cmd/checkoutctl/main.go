// Checkoutctl is an offline companion to the checkout API.
//
// It prices the configured cart, lists coupons, and runs the same field
// formatting and section validation the API applies, without a server.
//
// Usage:
//
//	checkoutctl [command] [flags]
//
// The cart and rates come from the same configuration as the API
// (CHECKOUT_CONFIG and environment overrides).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
