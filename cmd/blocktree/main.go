// Command blocktree reconstructs structured documents from JSON dumps of
// positioned text runs.
//
//	blocktree parse --input pages.json --format html > doc.html
//	blocktree config > blocktree.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
