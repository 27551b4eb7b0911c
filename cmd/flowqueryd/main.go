// Command flowqueryd boots a flowquery server process: load config, wire
// logging, construct a project.Project from the embedding deployment's
// parameter configs, model registry and entries, then serve. A concrete
// deployment supplies its own parameter/model/entry declarations and
// sqlengine.Engine/auth.Authenticator implementations by importing
// github.com/forbearing/flowquery/project directly and building its own
// main; this command is the reference wiring for an otherwise-empty
// project, useful for smoke-testing the server skeleton.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/forbearing/flowquery/config"
	pkgzap "github.com/forbearing/flowquery/logger/zap"
	"github.com/forbearing/flowquery/project"
	"github.com/forbearing/flowquery/router"
	"go.uber.org/zap"
)

func main() {
	if err := config.Init(); err != nil {
		panic(err)
	}
	if err := pkgzap.Init(); err != nil {
		panic(err)
	}
	defer pkgzap.Clean()

	proj, err := project.New(project.Options{})
	if err != nil {
		zap.S().Fatalw("failed to build project", "err", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- router.Run(proj) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		zap.S().Infow("shutting down", "signal", sig)
		router.Stop()
	case err := <-errCh:
		if err != nil {
			zap.S().Errorw("server exited", "err", err)
		}
	}
}
