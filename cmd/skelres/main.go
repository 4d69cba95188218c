// Command-line tool that maps segmentations between coarse and fine grids and moves
// skeletons between them.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Rhoana/topological-thinning/config"
	"github.com/Rhoana/topological-thinning/thinning"
)

var (
	// Display usage if true.
	showHelp = flag.Bool("help", false, "")

	// Run in verbose mode if true.
	runVerbose = flag.Bool("verbose", false, "")

	// Path to TOML configuration file.
	configFile = flag.String("config", "config.toml", "")

	// Read correspondences from the badger index instead of the map files.
	useIndex = flag.Bool("index", false, "")
)

const helpMessage = `
skelres relates segmentations and their skeletons at coarse and fine resolutions

Usage: skelres [options] <command> <prefix> ...

      -config     =string   Path to TOML configuration file (default config.toml).
      -index      (flag)    Read correspondences from the configured badger index.
      -verbose    (flag)    Run in verbose mode.
  -h, -help       (flag)    Show help message

Commands:

	downsample <prefix>   Build and store the coarse/fine maps from the segmentation.
	index      <prefix>   Load the stored maps into the badger index.
	vectors    <prefix>   Write endpoint vectors of the coarse skeletons.
	upsample   <prefix>   Write fine-resolution skeleton point sets.
	show       <prefix>   Print the fine skeletons of each label.
	about                 Show configured datasets.
`

var usage = func() {
	fmt.Printf(helpMessage)
}

func main() {
	flag.BoolVar(showHelp, "h", false, "Show help message")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() >= 1 && strings.ToLower(flag.Args()[0]) == "help" {
		*showHelp = true
	}
	if *runVerbose {
		thinning.Verbose = true
		thinning.SetLogMode(thinning.DebugMode)
	}
	if *showHelp || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Printf("Unable to load configuration: %v\n", err)
		os.Exit(1)
	}
	cfg.Logging.SetLogger()

	// Capture ctrl+c and other interrupts so partially written objects are discarded.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = DoCommand(ctx, cfg, flag.Args())
	stop()
	thinning.Shutdown()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// DoCommand runs a command on each given prefix in turn, stopping at the first error.
func DoCommand(ctx context.Context, cfg *config.Config, args []string) error {
	cmd := strings.ToLower(args[0])
	if cmd == "about" {
		return about(cfg)
	}
	run, found := commands[cmd]
	if !found {
		return fmt.Errorf("unknown command %q", args[0])
	}
	prefixes := args[1:]
	if len(prefixes) == 0 {
		return fmt.Errorf("command %q needs at least one prefix", cmd)
	}
	for _, prefix := range prefixes {
		thinning.Infof("Running %s on %s\n", cmd, prefix)
		if err := run(ctx, cfg, prefix); err != nil {
			thinning.Errorf("%s on %s failed: %v\n", cmd, prefix, err)
			return err
		}
	}
	return nil
}
