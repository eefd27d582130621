package main

import (
	"strings"
	"testing"

	"github.com/Clark-Hu/movie-browser/internal/browse"
	"github.com/Clark-Hu/movie-browser/internal/config"
	"github.com/Clark-Hu/movie-browser/internal/render"
)

func baseConfig() config.BrowserConfig {
	return config.BrowserConfig{
		BackendURL:    "http://localhost:8000",
		Strategy:      "relevancy",
		TimeoutSecs:   10,
		HistoryFile:   "/tmp/history",
		SlidesPerView: 5,
		TagBatch:      6,
		Layout:        "cards",
	}
}

func parseFlags(t *testing.T, args ...string) (settings, error) {
	t.Helper()
	cmd := newRootCommand()
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags(%v): %v", args, err)
	}
	var flags rootFlags
	fs := cmd.Flags()
	flags.backend, _ = fs.GetString("backend")
	flags.strategy, _ = fs.GetString("strategy")
	flags.timeout, _ = fs.GetInt("timeout")
	flags.layout, _ = fs.GetString("layout")
	flags.slides, _ = fs.GetInt("slides")
	flags.tagBatch, _ = fs.GetInt("tag-batch")
	flags.history, _ = fs.GetString("history")
	return applyFlags(cmd, baseConfig(), flags)
}

func TestApplyFlagsKeepsEnvironmentWhenUnset(t *testing.T) {
	s, err := parseFlags(t)
	if err != nil {
		t.Fatalf("applyFlags: %v", err)
	}
	if s.cfg != baseConfig() {
		t.Fatalf("cfg = %+v", s.cfg)
	}
	if s.strategy != browse.StrategyRelevancy || s.layout != render.LayoutCards {
		t.Fatalf("strategy %q layout %q", s.strategy, s.layout)
	}
}

func TestApplyFlagsOverrides(t *testing.T) {
	s, err := parseFlags(t,
		"--backend", "https://catalog.example.com",
		"--strategy", "classic",
		"--timeout", "0",
		"--layout", "table",
		"--slides", "3",
		"--tag-batch", "4",
		"--history", "/tmp/other",
	)
	if err != nil {
		t.Fatalf("applyFlags: %v", err)
	}
	if s.cfg.BackendURL != "https://catalog.example.com" || s.cfg.TimeoutSecs != 0 {
		t.Fatalf("cfg = %+v", s.cfg)
	}
	if s.cfg.SlidesPerView != 3 || s.cfg.TagBatch != 4 || s.cfg.HistoryFile != "/tmp/other" {
		t.Fatalf("cfg = %+v", s.cfg)
	}
	if s.strategy != browse.StrategyClassic || s.layout != render.LayoutTable {
		t.Fatalf("strategy %q layout %q", s.strategy, s.layout)
	}
}

func TestApplyFlagsRejectsBadValues(t *testing.T) {
	tests := []struct {
		args    []string
		wantErr string
	}{
		{[]string{"--strategy", "fuzzy"}, "strategy"},
		{[]string{"--layout", "grid"}, "layout"},
		{[]string{"--slides", "0"}, "--slides"},
		{[]string{"--tag-batch", "-2"}, "--tag-batch"},
		{[]string{"--timeout", "-1"}, "--timeout"},
	}
	for _, tt := range tests {
		_, err := parseFlags(t, tt.args...)
		if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
			t.Fatalf("%v: error = %v, want contains %q", tt.args, err, tt.wantErr)
		}
	}
}

func TestNewLoggerDiscardsByDefault(t *testing.T) {
	logger, closeLog, err := newLogger(rootFlags{})
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	defer closeLog()
	if logger.Prefix() != "[movie-browser] " {
		t.Fatalf("prefix = %q", logger.Prefix())
	}
}
