// Command search indexes a corpus and answers queries interactively.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/cli"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath, dir, ext, color, logLevel string
	var top int

	flagSet := pflag.NewFlagSet("search", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to YAML config file")
	flagSet.StringVarP(&dir, "dir", "d", "", "corpus directory (overrides corpus.dir)")
	flagSet.StringVar(&ext, "ext", "", "corpus file extension (overrides corpus.extension)")
	flagSet.IntVarP(&top, "top", "n", 10, "results to print per query, 0 for all")
	flagSet.StringVar(&color, "color", "auto", "colorize output: auto, always or never")
	flagSet.StringVar(&logLevel, "log-level", "warn", "log level written to stderr")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dir != "" {
		cfg.Corpus.Source = config.SourceDir
		cfg.Corpus.Dir = dir
	}
	if ext != "" {
		cfg.Corpus.Extension = ext
	}
	logger.SetupWriter(os.Stderr, logLevel, "text")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, closeSource, err := corpus.Open(ctx, cfg.Corpus, cfg.Postgres)
	if err != nil {
		return err
	}
	defer closeSource()

	engine, err := indexer.BuildFromSource(ctx, src, cfg.Corpus, indexer.Options{
		Normalizer: tokenizer.New(tokenizer.Config{StopWords: cfg.Normalizer.StopWords}),
	})
	if err != nil {
		return err
	}
	slog.Debug("engine ready", "fingerprint", engine.Fingerprint())

	repl := cli.New(executor.New(engine), top, cli.NewStyles(renderer(color)))
	repl.Banner(os.Stdout)
	return repl.Run(ctx, os.Stdin, os.Stdout)
}

// renderer picks the lipgloss color profile for stdout.
func renderer(mode string) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(os.Stdout)
	switch mode {
	case "always":
		r.SetColorProfile(termenv.ANSI256)
	case "never":
		r.SetColorProfile(termenv.Ascii)
	default:
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			r.SetColorProfile(termenv.Ascii)
		}
	}
	return r
}
