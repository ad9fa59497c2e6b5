package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AnatoleLucet/sigstore"
	"github.com/AnatoleLucet/sigstore/gantt"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Reload a task file on change and print the timeline",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]

	g, _, err := openChart(path)
	if err != nil {
		return err
	}
	defer g.Close()

	out := cmd.OutOrStdout()

	// the bars settle last, so one print per flush shows the whole timeline
	bars := sigstore.NewReactive[map[int]gantt.Bar](g.Store(), "_bars")
	unsubscribe := bars.Subscribe(func(map[int]gantt.Bar) {
		if err := render(out, g, "table"); err != nil {
			logger.Error("render failed", zap.Error(err))
		}
		fmt.Fprintln(out)
	}, true)
	defer unsubscribe()

	g.Store().OnError(func(err any) {
		logger.Error("flush failed", zap.Any("error", err))
	})

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// editors replace files, so watch the directory
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	target := filepath.Clean(path)
	for {
		select {
		case <-stop:
			return nil
		case <-cmd.Context().Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}

			f, err := readChart(path)
			if err != nil {
				logger.Warn("reload failed", zap.Error(err))
				continue
			}

			logger.Debug("reloading", zap.String("file", path), zap.Int("tasks", len(f.Tasks)))
			if err := g.Load(f.Tasks); err != nil {
				logger.Warn("load failed", zap.Error(err))
			}
		}
	}
}
