package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/blogcms/cms-api/internal/api"
	"github.com/blogcms/cms-api/internal/core/ports"
	"github.com/blogcms/cms-api/internal/core/service"
	"github.com/blogcms/cms-api/internal/infrastructure/db/mongo"
	"github.com/blogcms/cms-api/internal/infrastructure/db/redis"
	"github.com/blogcms/cms-api/internal/infrastructure/http/handlers"
	"github.com/blogcms/cms-api/internal/infrastructure/mail"
	"github.com/blogcms/cms-api/internal/infrastructure/queue"
	"github.com/blogcms/cms-api/internal/infrastructure/storage"
	"github.com/blogcms/cms-api/internal/infrastructure/token"
	"github.com/blogcms/cms-api/internal/pkg/config"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, log, err := bootstrap(ctx)
	if err != nil {
		return err
	}

	client, db, err := mongo.Connect(ctx, mongoConfig(cfg))
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	users := mongo.NewUserRepository(db)
	staff := mongo.NewStaffRepository(db)
	blogs := mongo.NewBlogRepository(db)
	comments := mongo.NewCommentRepository(db)
	if err := mongo.EnsureIndexes(ctx, users, staff, blogs, comments); err != nil {
		return err
	}

	codec, err := token.NewCodec(tokenConfig(cfg))
	if err != nil {
		return err
	}

	store, uploadDir, err := newImageStore(ctx, cfg)
	if err != nil {
		return err
	}

	// Workers outlive the signal context so queued mail is flushed after the
	// server stops accepting requests.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Mail.NotifyWorkers, newNotifier(cfg, log), log)
	dispatcher.Start(workerCtx)
	defer func() {
		stopWorkers()
		dispatcher.Wait()
	}()

	images := service.NewImageService(store, log)
	e := api.NewRouter(api.Dependencies{
		Log:          log,
		Debug:        !cfg.IsProduction(),
		CORSOrigins:  cfg.CORSOrigins,
		Codec:        codec,
		Users:        users,
		Staff:        staff,
		Auth:         service.NewAuthService(users, staff, codec, log),
		Blogs:        service.NewBlogService(blogs, comments, images, redis.NewLikeGuard(rdb, cfg.Redis.LikeWindow), log),
		Comments:     service.NewCommentService(comments, blogs, dispatcher, log),
		Images:       images,
		UploadDir:    uploadDir,
		HealthChecks: []handlers.Check{handlers.MongoCheck(db), handlers.RedisCheck(rdb)},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Str("storage", cfg.Storage.Driver).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func tokenConfig(cfg *config.Config) token.Config {
	return token.Config{
		Secret:   cfg.Auth.JWTSecret,
		Issuer:   cfg.Auth.JWTIssuer,
		UserTTL:  cfg.Auth.UserTokenTTL,
		StaffTTL: cfg.Auth.StaffTokenTTL,
	}
}

// newImageStore returns the configured store and, for local storage, the
// directory the router serves under /uploads.
func newImageStore(ctx context.Context, cfg *config.Config) (ports.ImageStore, string, error) {
	if cfg.Storage.Driver == config.StorageS3 {
		s, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:          cfg.Storage.S3Bucket,
			Region:          cfg.Storage.S3Region,
			Endpoint:        cfg.Storage.S3Endpoint,
			AccessKeyID:     cfg.Storage.S3AccessKeyID,
			SecretAccessKey: cfg.Storage.S3SecretAccessKey,
			PublicURL:       cfg.Storage.S3PublicURL,
		})
		return s, "", err
	}

	s, err := storage.NewLocalStore(cfg.Storage.UploadDir, cfg.PublicURL+"/uploads")
	if err != nil {
		return nil, "", err
	}
	return s, s.Dir(), nil
}

func newNotifier(cfg *config.Config, log zerolog.Logger) ports.CommentNotifier {
	if !cfg.MailEnabled() {
		log.Info().Msg("SMTP not configured, comment notifications are only logged")
		return mail.NewLogNotifier(log)
	}
	siteURL := cfg.SiteURL
	if siteURL == "" {
		siteURL = cfg.PublicURL
	}
	return mail.NewSMTPNotifier(mail.Config{
		Host:     cfg.Mail.SMTPHost,
		Port:     cfg.Mail.SMTPPort,
		Username: cfg.Mail.SMTPUsername,
		Password: cfg.Mail.SMTPPassword,
		From:     cfg.Mail.From,
		To:       cfg.Mail.AdminEmail,
		SiteURL:  siteURL,
	})
}
