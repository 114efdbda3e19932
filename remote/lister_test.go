package remote

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Copi24/ftptogpmc/common/config"
)

func TestNewListerClampsRetries(t *testing.T) {
	log := logrus.NewEntry(logrus.New())

	for _, configured := range []int{-1, 0} {
		cfg := config.RemoteConfig{Name: "3DFF", Binary: "rclone", ListRetries: configured}
		l, ok := NewLister(cfg, log).(*toolLister)
		require.True(t, ok)
		assert.Equal(t, 1, l.retries, "configured %d", configured)
	}

	cfg := config.RemoteConfig{Name: "3DFF", Binary: "rclone", ListRetries: 3}
	l, ok := NewLister(cfg, log).(*toolLister)
	require.True(t, ok)
	assert.Equal(t, 3, l.retries)
}
