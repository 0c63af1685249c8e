package http_interface

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	log "github.com/sirupsen/logrus"
)

type service struct {
	config     ServiceConfig
	httpServer *http.Server

	log  func(format string, a ...interface{})
	warn func(err error, format string, a ...interface{})
}

func NewService(config ServiceConfig) (*service, error) {
	logFn := func(format string, a ...interface{}) {
		format = fmt.Sprintf("service: %s", format)
		log.Infof(format, a...)
	}
	warnFn := func(err error, format string, a ...interface{}) {
		format = fmt.Sprintf("service: %s", format)
		log.WithError(err).Warnf(format, a...)
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %s", err)
	}

	return &service{config, nil, logFn, warnFn}, nil
}

func (s *service) Start() error {
	handler := newWalletHandler(s.config.WalletService)

	router := httprouter.New()
	router.GET("/healthz", s.healthCheck)
	router.POST("/v1/wallets", handler.createWallet)
	router.GET("/v1/wallets", handler.listWallets)
	router.GET("/v1/wallets/:name", handler.getWalletInfo)
	router.POST("/v1/wallets/:name/join", handler.joinWallet)
	router.POST("/v1/wallets/:name/cosigners/:id/token", handler.rotateToken)

	s.httpServer = &http.Server{
		Addr:         s.config.address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.warn(err, "serving http")
		}
	}()

	s.log("start listening on %s", s.config.address())
	return nil
}

func (s *service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// nolint:errcheck
	s.httpServer.Shutdown(ctx)
	s.log("shutdown")
}

func (s *service) healthCheck(
	w http.ResponseWriter, _ *http.Request, _ httprouter.Params,
) {
	w.WriteHeader(http.StatusOK)
}
