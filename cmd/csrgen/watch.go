package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/syssam/csr/compiler/load"
)

var flagDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [patterns...]",
	Short: "Regenerate whenever a source file of the matching packages changes",
	Long:  "Runs one generation pass, then watches the package directories and runs a new pass after source changes settle. Changes to generated files are ignored.",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&flagDebounce, "debounce", 200*time.Millisecond, "quiet period before a new pass")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	watched := make(map[string]bool)
	pass := func() {
		report, dirs, err := generate(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "csrgen: %s\n", err)
			return
		}
		printReport(report)
		for _, dir := range dirs {
			if watched[dir] {
				continue
			}
			if err := w.Add(dir); err != nil {
				fmt.Fprintf(os.Stderr, "csrgen: watching %s: %s\n", dir, err)
				continue
			}
			watched[dir] = true
		}
	}
	pass()
	if len(watched) == 0 {
		return fmt.Errorf("no package directory to watch")
	}

	timer := time.NewTimer(flagDebounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if relevant(ev) {
				timer.Reset(flagDebounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "csrgen: watch: %s\n", err)
		case <-timer.C:
			pass()
		}
	}
}

// relevant reports whether ev changes a Go source file the generator reads.
func relevant(ev fsnotify.Event) bool {
	if filepath.Ext(ev.Name) != ".go" || load.Generated(ev.Name) {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}
