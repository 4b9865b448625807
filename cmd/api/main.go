package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"resumehub/internal/account"
	"resumehub/internal/api"
	"resumehub/internal/auth"
	"resumehub/internal/cloudinary"
	"resumehub/internal/config"
	"resumehub/internal/hr"
	"resumehub/internal/httpmiddleware"
	"resumehub/internal/mailer"
	"resumehub/internal/resume"
	"resumehub/internal/stats"
	"resumehub/internal/storage"
	"resumehub/internal/store"
	"resumehub/internal/store/memstore"
)

func main() {
	cfg := config.Load()
	logger := cfg.Logger()
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, logger); err != nil {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
}

// stores bundles whichever persistence backend is configured.
type stores struct {
	accounts interface {
		account.Store
		stats.AccountCounter
	}
	resumes interface {
		resume.Store
		hr.Store
		stats.ResumeCounter
	}
	close func()
}

func openStores(ctx context.Context, cfg config.App, logger *slog.Logger, health map[string]api.HealthCheck) (stores, error) {
	if cfg.StoreBackend == "memory" {
		logger.Warn("using in-memory store; data is lost on restart")
		return stores{accounts: memstore.NewAccounts(), resumes: memstore.NewResumes(), close: func() {}}, nil
	}

	version, err := store.Migrate(cfg.DatabaseURL)
	if err != nil {
		return stores{}, fmt.Errorf("migrate: %w", err)
	}
	logger.Info("database migrated", "version", version)

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return stores{}, err
	}
	health["db"] = db.Healthy
	return stores{
		accounts: account.NewRepository(db.Pool),
		resumes:  resume.NewRepository(db.Pool),
		close:    db.Close,
	}, nil
}

func openFiles(ctx context.Context, cfg config.App, logger *slog.Logger) (storage.Backend, error) {
	switch cfg.StorageBackend {
	case "s3":
		logger.Info("storing files in s3", "bucket", cfg.S3Bucket)
		return storage.NewS3(ctx, storage.S3Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Prefix:    "resumes",
		})
	case "cloudinary":
		logger.Info("storing files in cloudinary", "cloud", cfg.CloudinaryCloudName)
		return cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder), nil
	}
	logger.Info("storing files on disk", "dir", cfg.UploadDir)
	return storage.NewLocal(cfg.UploadDir)
}

func runHTTP(cfg config.App, logger *slog.Logger) error {
	ctx := context.Background()
	health := map[string]api.HealthCheck{}

	st, err := openStores(ctx, cfg, logger, health)
	if err != nil {
		return err
	}
	defer st.close()

	files, err := openFiles(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open file storage: %w", err)
	}

	var limiter httpmiddleware.Limiter = httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
	if cfg.RateLimitBackend == "redis" {
		redisClient := store.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx, 2*time.Second); err != nil {
			logger.Warn("redis not reachable, rate limiting will fail open", "error", err)
		}
		health["redis"] = redisClient.Healthy
		limiter = httpmiddleware.NewRedisWindow(redisClient.Client, cfg.RateLimitPerMin)
	}

	signer := auth.NewSigner(cfg.JWTIssuer, cfg.JWTSecret)
	mail := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass, cfg.EmailFrom, logger)

	router := api.NewRouter(api.Deps{
		Accounts: account.NewService(st.accounts, signer, mail, account.Options{
			TokenTTL:  cfg.TokenTTL,
			ResetTTL:  cfg.ResetTTL,
			ClientURL: cfg.ClientURL,
		}, logger),
		Resumes: resume.NewService(st.resumes, files, resume.PDFExtractor{}, cfg.UploadURLPrefix, logger),
		HR:      hr.NewService(st.resumes, files, logger),
		Stats:   stats.NewService(st.accounts, st.resumes),
		Files:   files,
		Signer:  signer,
		Limiter: limiter,
		Health:  health,
		Logger:  logger,

		AuthRequired:    cfg.AuthRequired,
		MaxUploadBytes:  cfg.MaxUploadBytes,
		UploadURLPrefix: cfg.UploadURLPrefix,
		AllowedOrigins:  cfg.CORSOrigins,
		RequestLogging:  true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	logger.Info("shutting down server")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced shutdown", "error", err)
	}
	logger.Info("server exited")
	return nil
}
