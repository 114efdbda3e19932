// Package remote lists the origin server's directory tree through the
// external transfer tool's lsd/ls subcommands. Listings are non-recursive;
// traversal order belongs to the pipeline.
package remote

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/Copi24/ftptogpmc/common/config"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

type Entry struct {
	Name      string
	SizeBytes int64
}

type Lister interface {
	ListDirectories(ctx context.Context, path string) ([]string, error)
	ListFiles(ctx context.Context, path string) ([]Entry, error)
}

type toolLister struct {
	remote   string
	binary   string
	timeout  time.Duration
	retries  int
	listings *cache.Cache
	log      *logrus.Entry
}

func NewLister(cfg config.RemoteConfig, log *logrus.Entry) Lister {
	ttl := time.Duration(cfg.ListCacheSeconds) * time.Second
	retries := cfg.ListRetries
	if retries < 1 {
		retries = 1
	}
	return &toolLister{
		remote:   cfg.Name,
		binary:   cfg.Binary,
		timeout:  time.Duration(cfg.ListTimeoutSeconds) * time.Second,
		retries:  retries,
		listings: cache.New(ttl, 2*ttl),
		log:      log,
	}
}

func (l *toolLister) ListDirectories(ctx context.Context, path string) ([]string, error) {
	key := "lsd:" + path
	if v, ok := l.listings.Get(key); ok {
		return v.([]string), nil
	}

	out, err := l.runWithRetry(ctx, "lsd", path)
	if err != nil {
		return nil, err
	}

	dirs := ParseDirectoryListing(out)
	l.listings.SetDefault(key, dirs)
	return dirs, nil
}

func (l *toolLister) ListFiles(ctx context.Context, path string) ([]Entry, error) {
	key := "ls:" + path
	if v, ok := l.listings.Get(key); ok {
		return v.([]Entry), nil
	}

	out, err := l.runWithRetry(ctx, "ls", path, "--max-depth", "1")
	if err != nil {
		return nil, err
	}

	files := ParseFileListing(out)
	l.listings.SetDefault(key, files)
	return files, nil
}

func (l *toolLister) runWithRetry(ctx context.Context, subcommand string, path string, extraArgs ...string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= l.retries; attempt++ {
		if attempt > 1 {
			wait := time.Duration(10*attempt) * time.Second
			l.log.Infof("Waiting %s before listing retry...", wait)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		out, err := l.run(ctx, subcommand, path, extraArgs...)
		if err == nil {
			return out, nil
		}
		lastErr = err
		l.log.Warnf("Listing attempt %d/%d for %q failed: %v", attempt, l.retries, path, err)
	}
	return "", fmt.Errorf("all %d listing attempts failed for %q: %w", l.retries, path, lastErr)
}

func (l *toolLister) run(ctx context.Context, subcommand string, path string, extraArgs ...string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, l.timeout+2*time.Minute)
	defer cancel()

	args := []string{
		subcommand, l.remote + ":" + path,
	}
	args = append(args, extraArgs...)
	args = append(args,
		"--timeout", strconv.Itoa(int(l.timeout.Seconds()))+"s",
		"--contimeout", "60s",
		"--low-level-retries", "5",
		"--retries", "3",
	)

	out, err := exec.CommandContext(runCtx, l.binary, args...).Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}
