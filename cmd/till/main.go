// Till - offline-first point-of-sale register for dry cleaners.
//
// All records live in a local SQLite database so the register keeps working
// without connectivity; 'till sync' reconciles with the central backend.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tillworks/till/internal/cli"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := cli.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
