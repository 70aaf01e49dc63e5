package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := newRootCommand().Execute(); err != nil {
		// Interrupted runs already logged their own shutdown.
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "scribe: %v\n", err)
		}
		return 1
	}
	return 0
}
