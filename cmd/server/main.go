package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/aroray/settleup/internal/auth"
	"github.com/aroray/settleup/internal/config"
	"github.com/aroray/settleup/internal/server"
	"github.com/aroray/settleup/internal/service"
	"github.com/aroray/settleup/internal/storage/sqlite"
	"github.com/aroray/settleup/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Log.Level)

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Database.Path)

	srv := server.New(
		service.NewExpenseService(store),
		auth.NewDeviceAuthenticator(store),
		auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
	)

	// h2c serves HTTP/2 without TLS; mobile clients multiplex their
	// refresh polling over one connection.
	handler := h2c.NewHandler(srv.Handler(), &http2.Server{})

	slog.Info("Server starting", "address", cfg.Server.Addr)
	if err := http.ListenAndServe(cfg.Server.Addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
