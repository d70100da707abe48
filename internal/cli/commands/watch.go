package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leapstack-labs/claudelint/internal/cli/config"
	"github.com/leapstack-labs/claudelint/internal/discovery"
)

// watchDebounce is how long the watcher waits for events to settle before
// re-running.
const watchDebounce = 100 * time.Millisecond

// reloadFunc loads the configuration again after its file changed.
type reloadFunc func() (*config.Config, error)

// watch validates once, then again after every settled batch of file
// events, until ctx is done.
func watch(ctx context.Context, cmdCtx *CommandContext, sess *Session, paths []string, reload reloadFunc) error {
	r := cmdCtx.Renderer
	logger := cmdCtx.Logger

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	run := func() {
		if _, err := validateOnce(ctx, r, sess, paths); err != nil && ctx.Err() == nil {
			r.Error(err.Error())
		}
		dirs, err := watchDirs(sess, paths)
		if err != nil {
			logger.Warn("cannot list directories to watch", "error", err)
			return
		}
		for _, d := range dirs {
			if err := watcher.Add(d); err != nil {
				logger.Debug("cannot watch directory", "dir", d, "error", err)
			}
		}
		_, _ = fmt.Fprintf(r.ErrWriter(), "Watching %d directories for changes. Press Ctrl+C to stop.\n", len(watcher.WatchList()))
	}

	run()

	var (
		debounce      *time.Timer
		fire          <-chan time.Time
		configChanged bool
	)
	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if isConfigEvent(sess.Cfg, event.Name) {
				configChanged = true
			}
			logger.Debug("file event", "path", event.Name, "op", event.Op.String())

			// Debounce re-runs
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.NewTimer(watchDebounce)
			fire = debounce.C

		case <-fire:
			fire = nil
			if configChanged {
				configChanged = false
				next, err := reloadSession(sess, reload, logger)
				if err != nil {
					r.Error(err.Error())
				} else {
					sess = next
				}
			}
			run()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

// reloadSession loads the configuration again and builds a fresh session.
// The old session keeps serving when the new configuration is broken.
func reloadSession(old *Session, reload reloadFunc, logger *slog.Logger) (*Session, error) {
	cfg, err := reload()
	if err != nil {
		return nil, err
	}
	next, err := NewSession(cfg, old.logger)
	if err != nil {
		return nil, err
	}
	old.Resolver.ClearCache()
	logger.Info("configuration reloaded", "file", cfg.File)
	return next, nil
}

// isConfigEvent reports whether path is the loaded config file, a .env
// next to it, or a custom rule file.
func isConfigEvent(cfg *config.Config, path string) bool {
	if cfg.File != "" && filepath.Clean(path) == filepath.Clean(cfg.File) {
		return true
	}
	if filepath.Base(path) == ".env" && filepath.Dir(path) == filepath.Clean(cfg.ProjectRoot) {
		return true
	}
	if filepath.Ext(path) == ".star" {
		return true
	}
	for _, name := range config.FileNames {
		if filepath.Base(path) == name {
			return true
		}
	}
	return false
}

// watchDirs returns the directories to watch: those holding discovered
// files, the requested paths, the project root and custom rule locations.
func watchDirs(sess *Session, paths []string) ([]string, error) {
	files, err := sess.Discover(paths)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	add := func(dir string) {
		if dir == "" || seen[dir] {
			return
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return
		}
		seen[dir] = true
	}

	for _, d := range discovery.Dirs(files) {
		add(d)
	}
	cwd, _ := os.Getwd()
	if len(paths) == 0 {
		add(cwd)
	}
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(cwd, p)
		}
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			p = filepath.Dir(p)
		}
		add(p)
	}
	add(sess.Cfg.ProjectRoot)
	for _, p := range sess.Cfg.CustomRules {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			p = filepath.Dir(p)
		}
		add(p)
	}

	dirs := make([]string, 0, len(seen))
	for d := range seen {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs, nil
}
