package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Copi24/ftptogpmc/common/config"
	"github.com/Copi24/ftptogpmc/common/logging"
	"github.com/Copi24/ftptogpmc/common/rcontext"
	"github.com/Copi24/ftptogpmc/common/runtime"
	"github.com/Copi24/ftptogpmc/common/version"
	"github.com/Copi24/ftptogpmc/convert"
	"github.com/Copi24/ftptogpmc/metrics"
	"github.com/Copi24/ftptogpmc/pipeline"
	"github.com/Copi24/ftptogpmc/remote"
	"github.com/Copi24/ftptogpmc/state"
	"github.com/Copi24/ftptogpmc/transfer"
	"github.com/Copi24/ftptogpmc/upload"
)

func main() {
	configPath := flag.String("config", "ftp-sync.yaml", "The path to the configuration")
	versionFlag := flag.Bool("version", false, "Prints the version and exits")
	flag.Parse()

	if *versionFlag {
		version.Print(false)
		return // exit 0
	}

	// Override config path with config for Docker users
	configEnv := os.Getenv("SYNC_CONFIG")
	if configEnv != "" {
		configPath = &configEnv
	}

	config.Path = *configPath
	if config.Get().Sentry.Enabled {
		logrus.Info("Setting up Sentry for debugging...")
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.Get().Sentry.Dsn,
			Environment: config.Get().Sentry.Environment,
			Debug:       config.Get().Sentry.Debug,
			Release:     fmt.Sprintf("%s-%s", version.Version, version.GitCommit),
		})
		if err != nil {
			panic(err)
		}
	}
	defer sentry.Flush(2 * time.Second)
	defer sentry.Recover()

	err := logging.Setup(
		config.Get().General.LogDirectory,
		config.Get().General.LogColors,
		config.Get().General.JsonLogs,
		config.Get().General.LogLevel,
	)
	if err != nil {
		panic(err)
	}

	logrus.Info("Starting up...")
	runtime.RunStartupSequence()

	logrus.Info("Starting config watcher...")
	watcher := config.Watch()
	defer func(watcher *fsnotify.Watcher) {
		_ = watcher.Close()
	}(watcher)

	metrics.Init()
	defer metrics.Stop()

	// Stop signals cancel the walk; the file in flight finishes or fails
	// on its own terms and the state file stays consistent either way.
	ctx, cancel := context.WithCancel(context.Background())
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		logrus.Warn("Stop signal received")
		cancel()
	}()

	runId := uuid.NewString()
	rctx := rcontext.FromParent(ctx).LogWithFields(logrus.Fields{"runId": runId})

	cfg := rctx.Config
	store := state.Load(cfg.Pipeline.StateFile, rctx.Log)
	store.SetRunId(runId)
	if stale, ok := store.InProgressPath(); ok {
		rctx.Log.Warn("Previous run left a file in progress - it will be retried: ", stale)
	}

	tempDir := cfg.Pipeline.TempDirectory
	if tempDir == "" {
		tempDir, err = os.MkdirTemp("", "ftp_sync_")
		if err != nil {
			logrus.Fatal(err)
		}
		defer func() {
			_ = os.RemoveAll(tempDir)
		}()
	} else if err = os.MkdirAll(tempDir, 0755); err != nil {
		logrus.Fatal(err)
	}
	rctx.Log.Info("Staging downloads in ", tempDir)

	uploader, err := upload.NewS3Uploader(cfg.Upload, os.Getenv(runtime.AuthDataEnv))
	if err != nil {
		logrus.Fatal(err)
	}

	controller := &pipeline.Controller{
		Remote:   remote.NewLister(cfg.Remote, rctx.Log),
		Download: transfer.NewSupervisor(transfer.NewTool(cfg.Remote, cfg.Transfer), cfg.Transfer),
		Upload:   upload.WithRetries(uploader, cfg.Upload),
		State:    store,
		Disk:     pipeline.NewDiskChecker(),
		TempDir:  tempDir,
	}
	if cfg.Convert.Enabled {
		controller.Convert = convert.NewRemuxer(cfg.Convert)
	}

	rctx.Log.Info("Starting transfer run...")
	summary := controller.Run(rctx)

	stats := store.Stats()
	rctx.Log.Infof("Run finished: %d completed, %d failed, %d skipped, %s transferred this run",
		summary.Completed, summary.Failed, summary.Skipped, humanize.IBytes(uint64(summary.Bytes)))
	rctx.Log.Infof("Lifetime totals: %d uploaded, %d failed, %s",
		stats.TotalUploaded, stats.TotalFailed, humanize.IBytes(uint64(stats.TotalBytes)))

	if summary.Failed > 0 {
		os.Exit(1)
	}
	logrus.Info("Goodbye!")
}
