package rcontext

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/Copi24/ftptogpmc/common/config"
)

func TestRefreshPicksUpNewConfig(t *testing.T) {
	first := config.NewDefaultSyncConfig()
	second := config.NewDefaultSyncConfig()
	second.Transfer.MaxAttempts = 99

	live := &first
	ctx := RunContext{
		Context:      context.Background(),
		Log:          logrus.NewEntry(logrus.New()),
		Config:       live,
		ConfigSource: func() *config.SyncConfig { return live },
	}

	live = &second
	refreshed := ctx.Refresh()
	assert.Equal(t, 99, refreshed.Config.Transfer.MaxAttempts)
	assert.NotEqual(t, 99, ctx.Config.Transfer.MaxAttempts, "the original context is unchanged")
}

func TestRefreshWithoutSourceKeepsInjectedConfig(t *testing.T) {
	pinned := config.NewDefaultSyncConfig()
	pinned.Pipeline.MaxFailures = 7

	ctx := RunContext{
		Context: context.Background(),
		Log:     logrus.NewEntry(logrus.New()),
		Config:  &pinned,
	}

	refreshed := ctx.Refresh()
	assert.Equal(t, 7, refreshed.Config.Pipeline.MaxFailures)
}

func TestLoggerHelpersCarryTheSource(t *testing.T) {
	cfg := config.NewDefaultSyncConfig()
	swapped := config.NewDefaultSyncConfig()
	swapped.Pipeline.MaxFailures = 42

	ctx := RunContext{
		Context:      context.Background(),
		Log:          logrus.NewEntry(logrus.New()),
		Config:       &cfg,
		ConfigSource: func() *config.SyncConfig { return &swapped },
	}

	derived := ctx.LogWithFields(logrus.Fields{"file": "a.mkv"}).Refresh()
	assert.Equal(t, 42, derived.Config.Pipeline.MaxFailures)
}
