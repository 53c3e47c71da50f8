package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"collect-and-cruise/internal/api"
	"collect-and-cruise/internal/auth"
	"collect-and-cruise/internal/config"
	"collect-and-cruise/internal/imagehost"
	"collect-and-cruise/internal/services"
	"collect-and-cruise/internal/store"
	"collect-and-cruise/internal/store/memstore"
	"collect-and-cruise/internal/store/mongostore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	st, closeStore := openStore(ctx, cfg)
	defer closeStore()

	images, uploadDir := openUploader(cfg)

	authSvc := services.NewAuthService(st.Users, auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL))
	router := api.NewRouter(api.Deps{
		Auth:        authSvc,
		Catalog:     services.NewCatalogService(st.Products, st.Orders, images),
		Cart:        services.NewCartService(st.Users, st.Products),
		Wishlist:    services.NewWishlistService(st.Users, st.Products),
		Orders:      services.NewOrderService(st.Users, st.Products, st.Orders),
		Admin:       services.NewAdminService(st.Users),
		CORSOrigins: cfg.CORSOrigins,
		UploadDir:   uploadDir,
		Production:  cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("HTTP server Shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	log.Printf("Server running in %s mode on port %s", cfg.Env, cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("listen: %s\n", err)
	}

	<-idleConnsClosed
	log.Println("server stopped")
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, func()) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Println("using in-memory store, data is lost on exit")
		return memstore.New(), func() {}
	}

	client, err := mongostore.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal(err)
	}
	db := client.Database(cfg.MongoDB)
	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		log.Fatal(err)
	}
	return mongostore.New(db), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.Printf("disconnect mongo: %v", err)
		}
	}
}

// openUploader prefers Cloudinary and falls back to local disk. The
// returned directory is non-empty only for local disk.
func openUploader(cfg config.Config) (imagehost.Uploader, string) {
	if cfg.CloudinaryURL != "" {
		cld, err := imagehost.NewCloudinary(cfg.CloudinaryURL)
		if err != nil {
			log.Fatal(err)
		}
		return cld, ""
	}
	local, err := imagehost.NewLocal(cfg.UploadDir, "/uploads")
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("CLOUDINARY_URL not set, storing images in %s", cfg.UploadDir)
	return local, cfg.UploadDir
}
