// Package cmd wires the cobra command line: flag parsing, config loading,
// and the coordinator are explicitly out of scope beyond this thin seam
// (spec.md §1 names "command-line argument parsing" and "configuration file
// loading" among the out-of-scope collaborators), but the program still
// needs a concrete entrypoint to assemble everything defined in the core
// pipeline.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shiguri-01/preview-pdf/internal/config"
	"github.com/shiguri-01/preview-pdf/internal/coordinator"
	"github.com/shiguri-01/preview-pdf/internal/extension"
	"github.com/shiguri-01/preview-pdf/internal/presenter"
	"github.com/shiguri-01/preview-pdf/internal/rasterizer"
	"github.com/shiguri-01/preview-pdf/internal/render"
	"github.com/shiguri-01/preview-pdf/internal/termproto"
	"github.com/shiguri-01/preview-pdf/internal/termsession"
)

// Version is overridden at build time via -ldflags.
var Version = "dev"

var configPathFlag string

// NewRootCmd builds the pvf root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pvf <path>",
		Short:         "Terminal page viewer",
		Long:          "pvf — view PDF pages in the terminal with prefetched, cached rendering.",
		Version:       fmt.Sprintf("pvf v%s", Version),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runViewer(args[0])
		},
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "", "Override config file path (default: $PVF_CONFIG_PATH or $XDG_CONFIG_HOME/pvf/config.toml)")
	return rootCmd
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

func loadConfig() (config.Config, error) {
	if configPathFlag != "" {
		return config.LoadFromPath(configPathFlag)
	}
	return config.Load()
}

// runViewer assembles every core component — the render worker pool (C4),
// the L2 cache and encode worker (C5), and the coordinator loop (C6) — over
// the placeholder rasterizer and terminal blitter, and runs until the user
// quits or an unrecoverable error occurs.
func runViewer(path string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	session, err := termsession.Enter()
	if err != nil {
		return err
	}
	defer func() { _ = session.Restore() }()

	loader := rasterizer.NewLoader()
	sharedBytes, err := loader.LoadSharedBytes(path)
	if err != nil {
		return err
	}
	doc, err := loader.OpenWithSharedBytes(path, sharedBytes)
	if err != nil {
		return err
	}
	defer func() { _ = doc.Close() }()

	pool, err := render.Spawn(path, doc.DocID(), cfg.Render.WorkerThreads, loader)
	if err != nil {
		return err
	}
	defer func() { _ = pool.Shutdown() }()

	encoder := presenter.NewEncoder(termproto.Backend{})
	defer encoder.Shutdown()

	blitter := termproto.NewBlitter(os.Stdout)
	l2 := presenter.NewL2Cache(cfg.Cache.L2MaxEntries, cfg.Cache.L2MemoryBudgetBytes())
	facade := presenter.NewFacade(l2, encoder, blitter)

	extHost := extension.NewHost()

	co, err := coordinator.New(cfg, doc, session, pool, facade, extHost, os.Stdout)
	if err != nil {
		return err
	}
	return co.Run()
}
