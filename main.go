package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

// maxIntervalSeconds is the longest interval a time.Duration can hold
const maxIntervalSeconds = math.MaxInt64 / int64(time.Second)

// runOptions holds the positional command-line arguments
type runOptions struct {
	Folder   string
	Interval time.Duration
	Filter   ExtensionFilter
}

// parseArgs validates <image-folder> <seconds-per-image> <extension>...
func parseArgs(args []string) (runOptions, error) {
	if len(args) < 3 {
		return runOptions{}, &StartupConfigError{Field: "arguments", Reason: "expected an image folder, seconds per image and at least one file type"}
	}

	seconds, err := strconv.Atoi(args[1])
	if err != nil {
		return runOptions{}, &StartupConfigError{Field: "seconds per image", Value: args[1], Reason: "must be an integer"}
	}
	if seconds < 1 {
		return runOptions{}, &StartupConfigError{Field: "seconds per image", Value: args[1], Reason: "must be at least 1"}
	}
	if int64(seconds) > maxIntervalSeconds {
		return runOptions{}, &StartupConfigError{Field: "seconds per image", Value: args[1], Reason: fmt.Sprintf("must be at most %d", maxIntervalSeconds)}
	}

	filter, err := NewExtensionFilter(args[2:])
	if err != nil {
		return runOptions{}, err
	}

	return runOptions{
		Folder:   args[0],
		Interval: time.Duration(seconds) * time.Second,
		Filter:   filter,
	}, nil
}

// app is the host program around the slideshow core
type app struct {
	out     io.Writer
	display Display
	loader  Loader
	sleep   func(time.Duration)
}

func newApp(out io.Writer) *app {
	return &app{
		out:     out,
		display: &ebitenDisplay{title: "Slideshow"},
		loader:  NewImageLoader(),
		sleep:   time.Sleep,
	}
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1))
}

// run discovers the images, prints the banner and blocks in the display loop.
// It returns ErrNoImages without touching the display when nothing matched.
func (a *app) run(opts runOptions, cfg Config) error {
	fmt.Fprintf(a.out, "Slideshow v. %s\n\n", version)
	fmt.Fprintf(a.out, "Searching for files in %s\n\n", opts.Folder)
	fmt.Fprintln(a.out, "File types:")
	fmt.Fprintln(a.out)
	for _, suffix := range opts.Filter.Suffixes() {
		fmt.Fprintln(a.out, suffix)
	}
	fmt.Fprintln(a.out)

	paths := DiscoverImages(opts.Folder, opts.Filter, DiscoveryOptions{
		IncludeArchives: cfg.IncludeArchives,
		SortMethod:      cfg.SortMethod,
	})
	fmt.Fprintf(a.out, "Loaded %s files\n\n", humanize.Comma(int64(len(paths))))

	w, h := a.display.ScreenSize()
	fmt.Fprintf(a.out, "Image size should be %d x %d\n\n", w, h)
	fmt.Fprintf(a.out, "Press %s to stop\n\n", strings.Join(cfg.Keybindings["exit"], " or "))

	if len(paths) == 0 {
		return ErrNoImages
	}

	// Give the desktop time to settle so no other window ends up on top.
	if cfg.SettleDelay > 0 {
		debugLog("Waiting %v before opening the window", cfg.SettleDelay)
		a.sleep(cfg.SettleDelay)
	}

	if srv := serveMetrics(cfg.MetricsAddr); srv != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
	}

	game := NewGame(paths, SlideshowOptions{
		Interval:         opts.Interval,
		Loader:           a.loader,
		Rand:             newRand(cfg.Seed),
		BackoffThreshold: cfg.FailureBackoffThreshold,
		FailureMemoSize:  cfg.FailureMemoSize,
		FailureMemoTTL:   cfg.FailureMemoTTL,
	}, cfg.Keybindings)

	infoLog("Starting slideshow of %d images, %v per image", len(paths), opts.Interval)
	return a.display.Run(game)
}

// flagValues are the command-line overrides for Config
type flagValues struct {
	configPath  string
	seed        int64
	settle      time.Duration
	archives    bool
	sortMethod  string
	fullscreen  bool
	metricsAddr string
	logLevel    string
}

func (f *flagValues) apply(cmd *cobra.Command, cfg *Config) error {
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = f.seed
	}
	if flags.Changed("settle") {
		if f.settle < 0 {
			return &StartupConfigError{Field: "settle delay", Value: f.settle.String(), Reason: "must not be negative"}
		}
		cfg.SettleDelay = f.settle
	}
	if flags.Changed("archives") {
		cfg.IncludeArchives = f.archives
	}
	if flags.Changed("sort") {
		method, ok := parseSortMethod(f.sortMethod)
		if !ok {
			return &StartupConfigError{Field: "sort method", Value: f.sortMethod, Reason: "must be natural, simple or entry"}
		}
		cfg.SortMethod = method
	}
	if flags.Changed("fullscreen") {
		cfg.Fullscreen = f.fullscreen
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = f.metricsAddr
	}
	return nil
}

func newRootCmd(a *app) *cobra.Command {
	var fv flagValues

	cmd := &cobra.Command{
		Use:   "slideshow <image-folder> <seconds-per-image> <file-type-1> [<file-type-2> ...]",
		Short: "Full-screen slideshow of random images from a folder",
		Long: `Scans an image folder recursively for files ending in one of the given
file types and shows them in random order in a borderless full-screen window.`,
		Example:       `  slideshow ~/photos 10 .jpg .jpeg .png`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 3 {
				return cmd.Usage()
			}

			if fv.logLevel != "" {
				setLogLevel(parseLogLevel(fv.logLevel))
			}

			opts, err := parseArgs(args)
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), err)
				return nil
			}

			configPath := fv.configPath
			if configPath == "" {
				configPath = getConfigPath()
			}
			loaded := loadConfigFromPath(configPath)
			if loaded.Status != "OK" && loaded.Status != "Default" {
				warnLog("Config %s: %s", configPath, strings.Join(loaded.Warnings, "; "))
			}
			cfg := loaded.Config
			if err := fv.apply(cmd, &cfg); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), err)
				return nil
			}
			if d, ok := a.display.(*ebitenDisplay); ok {
				d.fullscreen = cfg.Fullscreen
			}

			a.out = cmd.OutOrStdout()
			err = a.run(opts, cfg)
			if errors.Is(err, ErrNoImages) {
				return nil
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&fv.configPath, "config", "", "config file (default ~/.slideshow.yaml)")
	flags.Int64Var(&fv.seed, "seed", 0, "random seed, 0 for time-based")
	flags.DurationVar(&fv.settle, "settle", defaultSettleDelay, "wait before the window opens")
	flags.BoolVar(&fv.archives, "archives", false, "also show matching images inside .zip, .rar and .7z files")
	flags.StringVar(&fv.sortMethod, "sort", "natural", "order of the discovered list: natural, simple or entry")
	flags.BoolVar(&fv.fullscreen, "fullscreen", false, "use exclusive fullscreen instead of a borderless window")
	flags.StringVar(&fv.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	flags.StringVar(&fv.logLevel, "log-level", "", "debug, info, warn or error")

	// Bad flags are startup errors like bad arguments: report and exit 0.
	// This also catches a negative interval, which pflag reads as a shorthand.
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		fmt.Fprintln(c.OutOrStdout(), &StartupConfigError{Field: "arguments", Reason: err.Error()})
		fmt.Fprintln(c.OutOrStdout())
		fmt.Fprint(c.OutOrStdout(), c.UsageString())
		return nil
	})

	cmd.AddCommand(newInitConfigCmd())
	return cmd
}

func newInitConfigCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write the default configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := getConfigPath()
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
			}
			if err := saveConfigToPath(defaultConfig(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func main() {
	cmd := newRootCmd(newApp(os.Stdout))
	cmd.SetOut(os.Stdout)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
