// Command pvf is a terminal-based document page viewer built around an
// asynchronous rendering pipeline: a priority scheduler and prefetch policy,
// two LRU cache layers, a render worker pool, and an encode worker pool feed
// a single cooperative coordinator loop that keeps the TUI responsive while
// pages rasterize and encode in the background.
package main

import (
	"fmt"
	"os"

	"github.com/shiguri-01/preview-pdf/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pvf:", err)
		os.Exit(1)
	}
}
