// Command cart drives one shopper session step against the persisted cart:
//
//	cart list
//	cart add <product-id>
//	cart remove <product-id>
//	cart update <product-id> <amount>
//	cart notifications [limit]
//
// The resulting cart is printed as JSON on stdout. Notifications go to stderr
// and turn the exit status to 2.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
