// jcli is a command-line client for the subtensor chain: wallets,
// transfers, delegated stake and the root network.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jungoai/jungo-cli/internal/substrate"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	a := newApp(os.Stdin, os.Stdout, os.Stderr, substrate.Dial)
	err := newRootCmd(a).ExecuteContext(ctx)
	stop()
	if err != nil {
		fatal("%v", err)
	}
}

// ── Error helper ────────────────────────────────────────────────────────

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
