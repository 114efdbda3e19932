package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/Copi24/ftptogpmc/common/config"
	"github.com/Copi24/ftptogpmc/common/logging"
	"github.com/Copi24/ftptogpmc/common/version"
	"github.com/Copi24/ftptogpmc/manifest"
	"github.com/Copi24/ftptogpmc/remote"
)

// Walks the whole remote and writes a machine-readable manifest plus a
// text rendering of the tree. Run it before a long transfer so the
// original layout survives even if the origin server goes away.
func main() {
	configPath := flag.String("config", "ftp-sync.yaml", "The path to the configuration")
	jsonOut := flag.String("out", "ftp_structure_manifest.json", "Where to write the JSON manifest")
	textOut := flag.String("tree", "ftp_structure_tree.txt", "Where to write the text tree")
	versionFlag := flag.Bool("version", false, "Prints the version and exits")
	flag.Parse()

	if *versionFlag {
		version.Print(false)
		return // exit 0
	}

	configEnv := os.Getenv("SYNC_CONFIG")
	if configEnv != "" {
		configPath = &configEnv
	}
	config.Path = *configPath

	err := logging.Setup(
		config.Get().General.LogDirectory,
		config.Get().General.LogColors,
		config.Get().General.JsonLogs,
		config.Get().General.LogLevel,
	)
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		logrus.Warn("Stop signal received")
		cancel()
	}()

	cfg := config.Get()
	log := logrus.WithField("remote", cfg.Remote.Name)
	log.Info("Scanning remote structure...")

	lister := remote.NewLister(cfg.Remote, log)
	root, err := manifest.Scan(ctx, lister, "")
	if err != nil {
		logrus.Fatal(err)
	}

	if err = manifest.WriteJSON(root, cfg.Remote.Name, *jsonOut); err != nil {
		logrus.Fatal(err)
	}
	if err = os.WriteFile(*textOut, []byte(manifest.RenderText(root)), 0644); err != nil {
		logrus.Fatal(err)
	}

	log.Infof("Manifest written: %d files, %s total", root.TotalFiles, humanize.IBytes(uint64(root.TotalSize)))
	log.Info("Saved ", *jsonOut, " and ", *textOut)
}
