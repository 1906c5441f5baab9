// Package main implements the eqscheme command, which renders the Dynamic
// Equilibrium scheme as one PNG per locale and optionally re-renders it when
// the style or locale file changes.
package main

import (
	"cmp"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"slices"
	"strings"

	"tools.zach/dev/eqscheme"
	"tools.zach/dev/eqscheme/internal/atomicfile"
	"tools.zach/dev/eqscheme/internal/compose"
	"tools.zach/dev/eqscheme/internal/config"
	"tools.zach/dev/eqscheme/internal/fonts"
	"tools.zach/dev/eqscheme/internal/locale"
	"tools.zach/dev/eqscheme/internal/logger"
	"tools.zach/dev/eqscheme/internal/paths"
	"tools.zach/dev/eqscheme/internal/watch"
)

// ///////////////////////////////////////////////
// Version
// ///////////////////////////////////////////////

// version is set at build time via ldflags (-X main.version=0.1.0). When it
// is not set, resolveVersion reads the VCS info embedded by the toolchain.
var version = "dev"

// resolveVersion returns the ldflags version, or "dev+<hash>" built from the
// embedded VCS revision, with ".dirty" appended for modified trees.
func resolveVersion() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return version
	}
	hash := revision[:min(7, len(revision))]
	if dirty {
		return "dev+" + hash + ".dirty"
	}
	return "dev+" + hash
}

// ///////////////////////////////////////////////
// Flags
// ///////////////////////////////////////////////

// options holds the parsed command line. Empty strings mean "use the value
// from the scheme file".
type options struct {
	configPath  string
	locales     []string
	outDir      string
	outFile     string
	watch       bool
	logLevel    string
	showVersion bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet(paths.BinaryName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	var locales string
	fs.StringVar(&opts.configPath, "config", paths.ConfigFile, "scheme style file (TOML); a missing file is created from the defaults")
	fs.StringVar(&locales, "locale", "", "comma-separated locale codes or glob patterns (overrides output.locales)")
	fs.StringVar(&opts.outDir, "out", "", "output directory (overrides output.dir)")
	fs.StringVar(&opts.outFile, "o", "", "write a single image to this path; needs exactly one locale")
	fs.BoolVar(&opts.watch, "watch", false, "re-render when the scheme or locale file changes")
	fs.StringVar(&opts.logLevel, "log-level", "", "trace, debug, info, warn or error (overrides log.level)")
	fs.BoolVar(&opts.showVersion, "version", false, "print the version and exit")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	if opts.outFile != "" && opts.outDir != "" {
		return options{}, errors.New("-o and -out cannot be combined")
	}
	opts.locales = splitPatterns(locales)
	return opts, nil
}

// splitPatterns splits a comma-separated list, dropping blank entries.
func splitPatterns(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ///////////////////////////////////////////////
// Main
// ///////////////////////////////////////////////

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	if opts.showVersion {
		fmt.Println(paths.BinaryName, resolveVersion())
		return
	}

	if err := run(opts, os.Stdout, os.Stderr, signalChannel()); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run loads the scheme file, sets up logging and renders every selected
// locale. With -watch it then blocks, re-rendering on file changes until stop
// fires. Confirmation lines go to stdout, log records to stderr.
func run(opts options, stdout, stderr io.Writer, stop <-chan os.Signal) error {
	// The scheme file decides the log level and file, so it is loaded with a
	// console-only logger first.
	boot := slog.New(logger.NewHandler(stderr, logger.ParseLevel(cmp.Or(opts.logLevel, "info"))))
	if opts.configPath != "" {
		writeDefaultScheme(boot, opts.configPath)
	}
	cfg, err := config.Load(boot, opts.configPath)
	if err != nil {
		return err
	}

	log, closer := logger.NewLogger(logger.Options{
		Console:   stderr,
		File:      cfg.Log.File,
		MaxSizeMB: cfg.Log.MaxSizeMB,
		Level:     logger.ParseLevel(cmp.Or(opts.logLevel, cfg.Log.Level)),
	})
	defer closer.Close()
	slog.SetDefault(log)

	log.Info("eqscheme starting", "version", resolveVersion(), "config", opts.configPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := renderPass(ctx, log, cfg, opts, stdout); err != nil {
		logger.Fail(log, "render failed", "error", err)
		return err
	}
	if !opts.watch {
		return nil
	}
	return watchLoop(ctx, log, cfg, opts, stdout, stop)
}

// writeDefaultScheme creates path from the annotated default scheme when it
// does not exist, so the first run leaves an editable file behind. Failure
// only warns: Load falls back to the same defaults.
func writeDefaultScheme(log *slog.Logger, path string) {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return
	}
	if err := atomicfile.Write(path, eqscheme.DefaultSchemeTOML, 0o644); err != nil {
		log.Warn("failed to write default scheme", "path", path, "error", err)
		return
	}
	log.Info("wrote default scheme", "path", path)
}

// ///////////////////////////////////////////////
// Rendering
// ///////////////////////////////////////////////

// renderPass loads the text bundle and fonts named by cfg and writes every
// selected locale, either into the output directory or to the -o path.
func renderPass(ctx context.Context, log *slog.Logger, cfg *config.Config, opts options, stdout io.Writer) error {
	bundle, err := locale.Load(log, cfg.Output.LocalesFile)
	if err != nil {
		return err
	}
	codes, err := selectLocales(bundle, cfg, opts)
	if err != nil {
		return err
	}

	fontSet, err := fonts.Load(ctx, log, fonts.Options{
		Regular:  cfg.Fonts.Regular,
		Bold:     cfg.Fonts.Bold,
		CacheDir: cfg.Fonts.CacheDir,
	})
	if err != nil {
		return err
	}

	k, err := compose.New(cfg, bundle, fontSet, log, stdout)
	if err != nil {
		return err
	}

	if opts.outFile != "" {
		return k.RenderVariant(codes[0], opts.outFile)
	}
	dir := paths.OutputDir{Root: cmp.Or(opts.outDir, cfg.Output.Dir), Scheme: cfg.Output.Scheme}
	written, err := k.RenderAll(codes, dir)
	if err != nil {
		return err
	}
	log.Debug("render pass complete", "images", len(written), "dir", dir.Root)
	return nil
}

// selectLocales picks the locales to render: the -locale patterns, else the
// locale encoded in the -o file name, else output.locales. With -o exactly
// one locale must remain.
func selectLocales(bundle *locale.Bundle, cfg *config.Config, opts options) ([]string, error) {
	patterns := opts.locales
	if len(patterns) == 0 && opts.outFile != "" {
		if code, ok := paths.LocaleFromFile(cfg.Output.Scheme, opts.outFile); ok {
			patterns = []string{code}
		}
	}
	if len(patterns) == 0 {
		patterns = cfg.Output.Locales
	}

	codes, err := bundle.Match(patterns)
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("no locale selected: %w", locale.ErrLocaleNotFound)
	}
	if opts.outFile != "" && len(codes) != 1 {
		return nil, fmt.Errorf("-o needs exactly one locale, got %d (%s)", len(codes), strings.Join(codes, ", "))
	}
	return codes, nil
}

// ///////////////////////////////////////////////
// Watch Mode
// ///////////////////////////////////////////////

// watchedFiles lists the inputs whose changes trigger a re-render.
func watchedFiles(opts options, cfg *config.Config) []string {
	var files []string
	if opts.configPath != "" {
		files = append(files, opts.configPath)
	}
	if cfg.Output.LocalesFile != "" {
		files = append(files, cfg.Output.LocalesFile)
	}
	return files
}

// watchLoop re-renders whenever a watched file changes. A failed re-render is
// logged and the loop keeps waiting for the next change, so an edit in
// progress does not end the session. The loop returns when stop fires.
func watchLoop(ctx context.Context, log *slog.Logger, cfg *config.Config, opts options, stdout io.Writer, stop <-chan os.Signal) error {
	files := watchedFiles(opts, cfg)
	w, err := watch.New(log, files...)
	if err != nil {
		return fmt.Errorf("-watch: %w", err)
	}
	defer func() { w.Close() }()
	log.Info("watching for changes", "files", w.Files(), "polling", w.Polling())

	for {
		select {
		case <-stop:
			log.Info("received shutdown signal")
			return nil

		case <-w.Events():
			next, err := config.Load(log, opts.configPath)
			if err == nil {
				err = renderPass(ctx, log, next, opts, stdout)
			}
			if err != nil {
				log.Error("re-render failed", "error", err)
				continue
			}
			cfg = next

			// locales_file may have been pointed elsewhere.
			if nextFiles := watchedFiles(opts, cfg); !slices.Equal(nextFiles, files) {
				nw, err := watch.New(log, nextFiles...)
				if err != nil {
					log.Warn("cannot watch new inputs, keeping previous set", "error", err)
					continue
				}
				w.Close()
				w, files = nw, nextFiles
				log.Info("watching for changes", "files", w.Files(), "polling", w.Polling())
			}
		}
	}
}
