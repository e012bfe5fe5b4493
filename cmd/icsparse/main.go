package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/jalexw/calendar-ics-parser/internal/config"
	"github.com/jalexw/calendar-ics-parser/internal/ics"
	appLog "github.com/jalexw/calendar-ics-parser/internal/log"
	"github.com/jalexw/calendar-ics-parser/internal/render"
	"github.com/jalexw/calendar-ics-parser/internal/web"
)

// flagConfig holds CLI flag values; set records which flags were given
// explicitly so they can override the config file.
type flagConfig struct {
	configPath  string
	format      string
	listen      string
	watch       string
	debug       bool
	strictRRule bool
	serve       bool
	sources     []string
	set         map[string]bool
}

func main() {
	os.Exit(run())
}

func run() int {
	flags := parseFlags()

	conf, err := loadConfig(flags)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		return 1
	}
	if conf.Debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	format, err := render.ParseFormat(conf.Format)
	if err != nil {
		appLog.Error("invalid output format", err, "format", conf.Format)
		return 2
	}

	sources := resolveSources(flags.sources, conf)

	appLog.Debug("effective config",
		"listen", conf.Listen,
		"format", format,
		"strict_rrule", conf.StrictRRule,
		"watch", conf.Watch,
		"cache_dir", conf.CacheDir,
		"sources", len(sources),
		"serve", flags.serve,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	p := &pipeline{
		fetcher: ics.NewFetcher(conf.CacheDir),
		sources: sources,
		opts:    ics.Options{Debug: conf.Debug, StrictRRule: conf.StrictRRule},
		format:  format,
		out:     os.Stdout,
	}

	if conf.Watch == "" && !flags.serve {
		if !p.run(ctx) {
			return 1
		}
		return 0
	}

	if conf.Watch != "" {
		c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
		if _, err := c.AddFunc(conf.Watch, func() { p.run(ctx) }); err != nil {
			appLog.Error("invalid watch schedule", err, "watch", conf.Watch)
			return 2
		}
		appLog.Info("watching sources", "schedule", conf.Watch, "sources", len(sources))
		p.run(ctx)
		c.Start()
		defer func() { <-c.Stop().Done() }()
	}

	if flags.serve {
		if err := web.StartServer(ctx, conf, conf.Debug); err != nil {
			appLog.Error("http server failed", err)
			return 1
		}
		return 0
	}

	<-ctx.Done()
	return 0
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "", "Path to a YAML config file (created with defaults if missing)")
	flag.StringVar(&cfg.format, "format", "", fmt.Sprintf("Output format %v (overrides config if set)", render.Formats))
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address for -serve (overrides config if set)")
	flag.StringVar(&cfg.watch, "watch", "", `Re-parse sources on a cron schedule, e.g. "*/15 * * * *"`)
	flag.BoolVar(&cfg.debug, "debug", false, "Trace every parse stage to stderr")
	flag.BoolVar(&cfg.strictRRule, "strict-rrule", false, "Drop events whose RRULE cannot be interpreted")
	flag.BoolVar(&cfg.serve, "serve", false, "Serve the HTTP API instead of printing results")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [file|-|url ...]\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()

	cfg.sources = flag.Args()
	cfg.set = make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { cfg.set[f.Name] = true })
	return cfg
}

// loadConfig reads the config file if one was given and applies explicit
// flags on top.
func loadConfig(flags flagConfig) (*config.Config, error) {
	conf := config.DefaultConfig()
	if flags.configPath != "" {
		var err error
		if conf, err = config.Load(flags.configPath); err != nil {
			return nil, err
		}
	}

	if flags.set["format"] {
		conf.Format = flags.format
	}
	if flags.set["listen"] {
		conf.Listen = flags.listen
	}
	if flags.set["watch"] {
		conf.Watch = flags.watch
	}
	if flags.set["debug"] {
		conf.Debug = flags.debug
	}
	if flags.set["strict-rrule"] {
		conf.StrictRRule = flags.strictRRule
	}
	conf.Normalize()
	return conf, conf.Validate()
}

// resolveSources prefers positional arguments, then configured sources,
// then stdin.
func resolveSources(args []string, conf *config.Config) []ics.Source {
	if len(args) > 0 {
		out := make([]ics.Source, 0, len(args))
		for _, a := range args {
			out = append(out, ics.Source{ID: a, Location: a})
		}
		return out
	}
	if len(conf.Sources) > 0 {
		out := make([]ics.Source, 0, len(conf.Sources))
		for _, s := range conf.Sources {
			out = append(out, ics.Source{ID: s.ID, Location: s.URL})
		}
		return out
	}
	return []ics.Source{{ID: "stdin", Location: "-"}}
}

// pipeline is one fetch, parse and render pass over all sources.
type pipeline struct {
	fetcher *ics.Fetcher
	sources []ics.Source
	opts    ics.Options
	format  render.Format
	out     io.Writer
}

// run reports whether every source loaded and parsed without errors.
func (p *pipeline) run(ctx context.Context) bool {
	results, errs := p.fetcher.FetchAll(ctx, p.sources)
	ok := len(errs) == 0

	for _, fr := range results {
		res := ics.ParseWithOptions(string(fr.Body), p.opts)
		if len(res.Metadata.ParseErrors) > 0 {
			ok = false
		}
		if len(p.sources) > 1 && (p.format == render.FormatPretty || p.format == render.FormatTable) {
			fmt.Fprintf(p.out, "==> %s <==\n", fr.Source.ID)
		}
		if err := render.Render(p.out, res, p.format); err != nil {
			appLog.Error("render failed", err, "id", fr.Source.ID)
			ok = false
		}
		for _, w := range res.Metadata.ParseWarnings {
			appLog.Debug("parse warning", "id", fr.Source.ID, "warning", w)
		}
	}
	return ok
}
