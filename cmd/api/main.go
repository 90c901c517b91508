package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kiwabc123/supply-admin/internal/auth"
	"github.com/kiwabc123/supply-admin/internal/blob"
	"github.com/kiwabc123/supply-admin/internal/blog"
	"github.com/kiwabc123/supply-admin/internal/catalog"
	"github.com/kiwabc123/supply-admin/internal/config"
	"github.com/kiwabc123/supply-admin/internal/httpapi"
	"github.com/kiwabc123/supply-admin/internal/obs"
	"github.com/kiwabc123/supply-admin/internal/store/pg"
)

var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if cfg.DatabaseDSN == "" {
		log.Fatal("config: SUPPLY_PG_DSN is required")
	}

	store, err := pg.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	codec, err := auth.NewTokenCodec(cfg.AuthSecret, cfg.Issuer, auth.WithDefaultTTL(cfg.TokenTTL))
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}

	authn, err := auth.NewAuthenticator(
		pg.NewUserStore(store),
		codec,
		auth.WithSessionStore(pg.NewSessionStore(store)),
	)
	if err != nil {
		log.Fatalf("authenticator: %v", err)
	}

	var blobs blob.Store
	if cfg.BlobEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		blobs, err = blob.NewS3Store(ctx, blob.Options{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Endpoint:  cfg.S3Endpoint,
			PublicURL: cfg.S3PublicURL,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		cancel()
		if err != nil {
			log.Fatalf("blob store: %v", err)
		}
	}

	api := httpapi.New(httpapi.Options{
		Auth:       authn,
		Catalog:    catalog.NewService(pg.NewCatalogStore(store)),
		Blog:       blog.NewService(pg.NewBlogStore(store)),
		Blobs:      blobs,
		ReadyProbe: httpapi.ReadyProbe{DB: store.DB()},
		Version:    version,
		RateBurst:  cfg.RateBurst,
		RatePerSec: cfg.RatePerSec,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting supply-admin %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}
