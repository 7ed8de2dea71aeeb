// Command dev-upstream imita o siteverify do Turnstile e o POST /emails do
// Resend para rodar o contact-api localmente sem credenciais reais:
//
//	TURNSTILE_URL=http://localhost:8081/turnstile/v0/siteverify
//	RESEND_URL=http://localhost:8081/emails
//
// O token "fail" é recusado pelo captcha; um "to" terminando em
// "@bounce.test" faz o envio falhar com 422.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contact-gateway/logging"

	"go.uber.org/zap"
)

func main() {
	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	logger, err := logging.New(os.Getenv("LOG_LEVEL"), "console")
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(newOutbox(), logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("dev upstream listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
