package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/tokengate/tokengated/internal/config"
	"github.com/tokengate/tokengated/internal/interface/web"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("invalid config: %s", err)
	}

	log.SetLevel(log.Level(cfg.LogLevel))

	proxy, err := cfg.Proxy()
	if err != nil {
		log.Fatalf("failed to create proxy: %s", err)
	}

	auditor, err := cfg.Auditor()
	if err != nil {
		log.Fatalf("failed to create auditor: %s", err)
	}
	if err := auditor.Start(); err != nil {
		log.Fatalf("failed to start auditor: %s", err)
	}

	svc := web.NewService(cfg.Port, proxy, cfg.ExtensionResolver())

	log.Info("starting service...")
	if err := svc.Start(); err != nil {
		log.Fatalf("failed to start service: %s", err)
	}
	log.Infof("tokengated listens on: %v", cfg.Port)

	log.RegisterExitHandler(func() {
		svc.Stop()
		auditor.Stop()
		if repo, err := cfg.RepoManager(); err == nil {
			repo.Close()
		}
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(
		sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGHUP, os.Interrupt,
	)
	<-sigChan

	log.Info("shutting down service...")
	log.Exit(0)
}
