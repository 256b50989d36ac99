package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/docspan/internal/app"
)

// debounceWindow coalesces the burst of events an editor save produces.
const debounceWindow = 200 * time.Millisecond

// cmdWatch plans once, then re-plans whenever the snapshot or the
// operations file changes, until interrupted.
func cmdWatch(eng *app.Engine, logger *app.Logger, opts options, opsPath string) int {
	log := logger.WithComponent("watch")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: create watcher: %v\n", err)
		return 1
	}
	defer watcher.Close()

	snapAbs, err := filepath.Abs(opts.SnapshotPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	opsAbs, err := filepath.Abs(opsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Watch the parent directories so atomic-rename saves keep
	// delivering events for the files themselves.
	dirs := map[string]bool{
		filepath.Dir(snapAbs): true,
		filepath.Dir(opsAbs):  true,
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			fmt.Fprintf(os.Stderr, "Error: watch %s: %v\n", dir, err)
			return 1
		}
	}

	replan := func() {
		sess, err := openSession(eng, opts)
		if err != nil {
			log.Error("reload snapshot: %v", err)
			return
		}
		planOnce(sess, opts, opsPath)
	}

	replan()
	log.Info("watching %s and %s", opts.SnapshotPath, opsPath)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	var timer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-signals:
			log.Info("stopping")
			return 0

		case event, ok := <-watcher.Events:
			if !ok {
				return 0
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || (name != snapAbs && name != opsAbs) {
				continue
			}
			log.Debug("%s %s", event.Op, event.Name)
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceWindow, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case <-pending:
			replan()

		case err, ok := <-watcher.Errors:
			if !ok {
				return 0
			}
			log.Error("watcher: %v", err)
		}
	}
}
