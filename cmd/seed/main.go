package main

import (
	"context"
	"time"

	"github.com/beelyapp/beely/internal/config"
	"github.com/beelyapp/beely/internal/db"
	"github.com/beelyapp/beely/internal/logging"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN, log)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal("db migrate", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rep, err := db.Seed(ctx, gdb, db.SeedOptions{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		VideoBaseURL:  cfg.VideoBaseURL,
		VideosPerSlug: cfg.VideosPerSlug,
	})
	if err != nil {
		log.Fatal("seed", zap.Error(err))
	}
	log.Info("seed finished",
		zap.Int("categories_created", rep.Categories),
		zap.Int("videos_created", rep.Videos),
		zap.Bool("admin_created", rep.Admin),
	)
}
