package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fursaconnect/fursa/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fursa: %v\n", err)
		stop()
		os.Exit(1)
	}
}
