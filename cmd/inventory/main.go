package main

import (
	"context"
	"database/sql"
	"os"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"InventoryStore/internal/inventory"
	"InventoryStore/pkg/kit"
)

func main() {
	service := "inventory"
	log := kit.NewLogger(service, getenv("LOG_LEVEL", "info"))
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	port := getenv("PORT", "8084")

	snap, closeSnap, err := openSnapshot(ctx, getenv("INVENTORY_BACKEND", "file"))
	if err != nil {
		log.Fatal("open snapshot backend failed", zap.Error(err))
	}
	defer closeSnap()

	inv := inventory.New()
	if os.Getenv("LOAD_ON_START") == "1" {
		if err := inv.Load(ctx, snap); err != nil {
			log.Warn("initial load failed, starting empty", zap.Error(err))
		} else {
			log.Info("inventory loaded", zap.Int("products", inv.Len()))
		}
	}

	var tokens *kit.TokenMaker
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		if len(secret) < 32 {
			log.Fatal("JWT_SECRET must be at least 32 chars")
		}
		tokens = kit.NewTokenMaker(secret)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &inventory.Server{Inventory: inv, Snapshot: snap, Log: log}
	h := inventory.NewHandler(s, inventory.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   os.Getenv("METRICS_TOKEN"),
		Tokens:         tokens,
		RateLimit:      getenvInt("RATE_LIMIT", 0),
		RateWindow:     time.Minute,
	})

	if err := kit.RunHTTPServer(ctx, ":"+port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func openSnapshot(ctx context.Context, backend string) (inventory.Snapshotter, func(), error) {
	switch backend {
	case "postgres":
		db, err := sql.Open("pgx", os.Getenv("DATABASE_URL"))
		if err != nil {
			return nil, nil, err
		}
		store := inventory.NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return store, func() { _ = db.Close() }, nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: getenv("REDIS_ADDR", "localhost:6379")})
		return inventory.NewRedisStore(client, os.Getenv("REDIS_KEY")), func() { _ = client.Close() }, nil
	default:
		return inventory.NewFileStore(getenv("INVENTORY_FILE", "data.json")), func() {}, nil
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return v
}
