package rcontext

import (
	"context"

	"github.com/Copi24/ftptogpmc/common/config"
	"github.com/sirupsen/logrus"
)

func Initial() RunContext {
	return RunContext{
		Context:      context.Background(),
		Log:          logrus.WithFields(logrus.Fields{"nocontext": true}),
		Config:       config.Get(),
		ConfigSource: config.Get,
	}.populate()
}

// RunContext carries the logger and active configuration through the
// pipeline so components never reach for ambient singletons mid-flight.
type RunContext struct {
	context.Context

	// These are also stored on the context object itself
	Log    *logrus.Entry
	Config *config.SyncConfig

	// ConfigSource re-reads the live configuration on Refresh, so a
	// reloaded config file reaches the next unit of work. Nil pins
	// Config for the context's lifetime.
	ConfigSource func() *config.SyncConfig
}

func (c RunContext) populate() RunContext {
	c.Context = context.WithValue(c.Context, "sync.logger", c.Log)
	c.Context = context.WithValue(c.Context, "sync.config", c.Config)
	return c
}

func FromParent(ctx context.Context) RunContext {
	return RunContext{
		Context:      ctx,
		Log:          logrus.WithFields(logrus.Fields{"nocontext": true}),
		Config:       config.Get(),
		ConfigSource: config.Get,
	}.populate()
}

// Refresh picks up the latest configuration from the context's source.
// Contexts built with an explicit Config and no source keep what they
// were given.
func (c RunContext) Refresh() RunContext {
	if c.ConfigSource == nil {
		return c
	}
	c.Config = c.ConfigSource()
	return c.populate()
}

func (c RunContext) ReplaceLogger(log *logrus.Entry) RunContext {
	ctx := context.WithValue(c.Context, "sync.logger", log)
	return RunContext{
		Context:      ctx,
		Log:          log,
		Config:       c.Config,
		ConfigSource: c.ConfigSource,
	}
}

func (c RunContext) LogWithFields(fields logrus.Fields) RunContext {
	return c.ReplaceLogger(c.Log.WithFields(fields))
}
