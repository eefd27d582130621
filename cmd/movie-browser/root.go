package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Clark-Hu/movie-browser/internal/browse"
	"github.com/Clark-Hu/movie-browser/internal/catalog"
	"github.com/Clark-Hu/movie-browser/internal/config"
	"github.com/Clark-Hu/movie-browser/internal/console"
	"github.com/Clark-Hu/movie-browser/internal/render"
)

type rootFlags struct {
	backend  string
	strategy string
	timeout  int
	layout   string
	slides   int
	tagBatch int
	history  string
	scripts  []string
	logFile  string
	verbose  bool
}

// settings is the browser configuration after flags have been applied.
type settings struct {
	cfg      config.BrowserConfig
	strategy browse.Strategy
	layout   render.Layout
}

func newRootCommand() *cobra.Command {
	var flags rootFlags

	rootCmd := &cobra.Command{
		Use:           "movie-browser",
		Short:         "Browse the movie catalog from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadBrowser()
			if err != nil {
				return err
			}
			s, err := applyFlags(cmd, cfg, flags)
			if err != nil {
				return err
			}
			return run(cmd.Context(), s, flags)
		},
	}

	fs := rootCmd.Flags()
	fs.StringVarP(&flags.backend, "backend", "b", "", "Catalog backend base URL")
	fs.StringVar(&flags.strategy, "strategy", "", "Search strategy: classic or relevancy")
	fs.IntVar(&flags.timeout, "timeout", 0, "Request timeout in seconds (0 waits forever)")
	fs.StringVar(&flags.layout, "layout", "", "Result layout: cards or table")
	fs.IntVar(&flags.slides, "slides", 0, "Movies shown per page")
	fs.IntVar(&flags.tagBatch, "tag-batch", 0, "Tags revealed per 'more'")
	fs.StringVar(&flags.history, "history", "", "Readline history file")
	fs.StringSliceVarP(&flags.scripts, "script", "s", nil, "Run commands from a file before the prompt (repeatable)")
	fs.StringVar(&flags.logFile, "log-file", "", "Append diagnostic logs to this file")
	fs.BoolVarP(&flags.verbose, "verbose", "v", false, "Write diagnostic logs to stderr")

	return rootCmd
}

// applyFlags overlays explicitly set flags on the environment configuration.
func applyFlags(cmd *cobra.Command, cfg config.BrowserConfig, flags rootFlags) (settings, error) {
	changed := cmd.Flags().Changed
	if changed("backend") {
		cfg.BackendURL = flags.backend
	}
	if changed("strategy") {
		cfg.Strategy = flags.strategy
	}
	if changed("timeout") {
		if flags.timeout < 0 {
			return settings{}, fmt.Errorf("--timeout must be non-negative")
		}
		cfg.TimeoutSecs = flags.timeout
	}
	if changed("layout") {
		cfg.Layout = flags.layout
	}
	if changed("slides") {
		if flags.slides <= 0 {
			return settings{}, fmt.Errorf("--slides must be positive")
		}
		cfg.SlidesPerView = flags.slides
	}
	if changed("tag-batch") {
		if flags.tagBatch <= 0 {
			return settings{}, fmt.Errorf("--tag-batch must be positive")
		}
		cfg.TagBatch = flags.tagBatch
	}
	if changed("history") {
		cfg.HistoryFile = flags.history
	}

	strategy, err := browse.ParseStrategy(cfg.Strategy)
	if err != nil {
		return settings{}, err
	}
	layout, err := render.ParseLayout(cfg.Layout)
	if err != nil {
		return settings{}, err
	}
	return settings{cfg: cfg, strategy: strategy, layout: layout}, nil
}

func newLogger(flags rootFlags) (*log.Logger, func(), error) {
	out := io.Discard
	closer := func() {}
	switch {
	case flags.logFile != "":
		f, err := os.OpenFile(flags.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closer = func() { _ = f.Close() }
	case flags.verbose:
		out = os.Stderr
	}
	return log.New(out, "[movie-browser] ", log.LstdFlags|log.Lshortfile), closer, nil
}

func run(ctx context.Context, s settings, flags rootFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer stop()

	logger, closeLog, err := newLogger(flags)
	if err != nil {
		return err
	}
	defer closeLog()

	client, err := catalog.NewHTTPClient(s.cfg.BackendURL, time.Duration(s.cfg.TimeoutSecs)*time.Second, logger)
	if err != nil {
		return err
	}
	ctrl := browse.New(client, browse.Options{
		Strategy: s.strategy,
		TagBatch: s.cfg.TagBatch,
		Logger:   logger,
	})
	renderer := render.New(os.Stdout, render.Options{
		SlidesPerView: s.cfg.SlidesPerView,
		Layout:        s.layout,
	})
	renderer.Attach(ctrl)

	logger.Printf("browsing %s (strategy=%s)", s.cfg.BackendURL, s.strategy)
	ctrl.Init(ctx)

	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	if !interactive {
		cli := console.New(ctrl, renderer, nil)
		if err := runScripts(ctx, cli, flags.scripts); err != nil {
			return err
		}
		return cli.ExecuteScript(ctx, os.Stdin)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "movies> ",
		HistoryFile:     s.cfg.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	cli := console.New(ctrl, renderer, rl)
	if err := runScripts(ctx, cli, flags.scripts); err != nil {
		return err
	}
	renderer.Print("Type 'help' for commands.")
	return cli.Loop(ctx)
}

func runScripts(ctx context.Context, cli *console.CLI, paths []string) error {
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open script: %w", err)
		}
		err = cli.ExecuteScript(ctx, f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("script %s: %w", path, err)
		}
	}
	return nil
}
