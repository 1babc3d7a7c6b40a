package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tokengate/tokengated/internal/core/application"
	"github.com/tokengate/tokengated/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

type Service struct {
	server *http.Server
}

func NewService(
	port uint32, proxy *application.Proxy, resolver ports.ExtensionResolver,
) *Service {
	return &Service{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      newRouter(proxy, resolver),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

func newRouter(proxy *application.Proxy, resolver ports.ExtensionResolver) *http.ServeMux {
	h := &handler{proxy: proxy, resolver: resolver}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/info", h.info)
	mux.HandleFunc("GET /v1/extensions", h.listExtensions)
	mux.HandleFunc("GET /v1/accounts/{address}/balance", h.balance)
	mux.HandleFunc("POST /v1/transfers", h.submitTransfer)
	mux.HandleFunc("POST /v1/admin/extensions", h.registerExtension)
	mux.HandleFunc("DELETE /v1/admin/extensions/{address}", h.removeExtension)
	mux.HandleFunc("POST /v1/admin/extensions/{address}/enable", h.enableExtension)
	mux.HandleFunc("POST /v1/admin/extensions/{address}/disable", h.disableExtension)
	mux.HandleFunc("POST /v1/admin/logic", h.upgradeLogic)
	mux.HandleFunc("POST /v1/admin/issuances", h.issue)
	return mux
}

func (s *Service) Start() error {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("web service exited")
		}
	}()
	return nil
}

func (s *Service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// nolint:all
	s.server.Shutdown(ctx)
}
