package main

import (
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/truevow/truevow/internal/api"
	"github.com/truevow/truevow/internal/catalog"
	"github.com/truevow/truevow/internal/config"
	"github.com/truevow/truevow/internal/db"
	"github.com/truevow/truevow/internal/logger"
	"github.com/truevow/truevow/internal/middleware"
	"github.com/truevow/truevow/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	var store api.Store
	if cfg.DBPath != "" {
		store, err = db.New(cfg.DBPath, cfg.MigrationsDir, zlog)
		if err != nil {
			zlog.Fatal("open database", zap.Error(err))
		}
	} else {
		store = api.NewMemoryStore()
		zlog.Warn("TRUEVOW_DB_PATH not set; data is kept in memory and lost on restart")
	}
	defer func() { _ = store.Close() }()

	// Profile definitions and promo codes are configuration: a broken set is
	// a startup failure, never a per-request one.
	profiles, err := services.DefaultProfileSet()
	if err != nil {
		zlog.Fatal("profile definitions invalid", zap.Error(err))
	}
	codes, err := cfg.PromoCodeMap()
	if err != nil {
		zlog.Fatal("promo code configuration invalid", zap.Error(err))
	}
	promo, err := services.NewPromoCodeValidator(codes)
	if err != nil {
		zlog.Fatal("promo code configuration invalid", zap.Error(err))
	}
	auth, err := middleware.NewAuth(cfg.JWTSecret, cfg.AdminKey)
	if err != nil {
		zlog.Fatal("auth configuration invalid", zap.Error(err))
	}
	if cfg.AdminKey == "" {
		zlog.Warn("TRUEVOW_ADMIN_KEY not set; admin endpoints are disabled")
	}

	cat := catalog.Default()
	mux := http.NewServeMux()
	api.NewRouter(api.RouterConfig{
		Store:     store,
		Catalog:   cat,
		Profiles:  profiles,
		Promo:     promo,
		Auth:      auth,
		Logger:    zlog,
		Commit:    cfg.Commit,
		BuildTime: cfg.BuildTime,
	}).Register(mux)

	handler := middleware.SecureHeaders(middleware.CORS(middleware.NoStore(auth.WithResultAuth(mux))))

	zlog.Info("TrueVow server listening",
		zap.String("addr", cfg.Addr),
		zap.Int("catalog_version", cat.Version()))
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
}
