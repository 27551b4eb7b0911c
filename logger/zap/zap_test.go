package zap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/forbearing/flowquery/config"
	"github.com/forbearing/flowquery/logger"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := config.Init(); err != nil {
		panic(err)
	}
	config.App.Logger.Dir = filepath.Join(os.TempDir(), "flowquery-logger-test")
	os.Exit(m.Run())
}

func TestInit_WiresSubsystemLoggers(t *testing.T) {
	require.NoError(t, Init())

	// Exercising every subsystem logger confirms each one Init wired up
	// logs without panicking.
	logger.Params.Infow("params resolved", "name", "country")
	logger.DAG.Debugw("node compiled", "model", "orders")
	logger.Cache.Warnw("cache miss", "key", "k1")
	logger.Handler.Errorw("request failed", "status", 500)
	logger.Engine.Infow("query executed", "model", "orders")
}

func TestNew_TracksCreatedLoggersForClean(t *testing.T) {
	before := len(created)
	New("extra.log")
	require.Equal(t, before+1, len(created))
	Clean()
}
