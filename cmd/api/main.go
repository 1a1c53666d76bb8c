package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-notifications-nosql/internal/application/message"
	"github.com/go-notifications-nosql/internal/application/notification"
	"github.com/go-notifications-nosql/internal/application/render"
	"github.com/go-notifications-nosql/internal/config"
	"github.com/go-notifications-nosql/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-notifications-nosql/internal/infrastructure/jwt"
	s3infra "github.com/go-notifications-nosql/internal/infrastructure/s3"
	"github.com/go-notifications-nosql/internal/infrastructure/smtp"
	"github.com/go-notifications-nosql/internal/infrastructure/sns"
	transporthttp "github.com/go-notifications-nosql/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		log.Fatalf("dynamodb client: %v", err)
	}
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	registrar := notification.NewRegistrar()
	if err := notification.RegisterPlatformNotifications(registrar); err != nil {
		log.Fatalf("register notifications: %v", err)
	}
	registrar.Freeze()

	notifSvc := notification.NewService(
		dynamo.NewNotificationStore(dynamoClient, cfg.DynamoTables.Notifications),
		registrar,
	)

	var templates message.TemplateRepository
	switch cfg.TemplateSource {
	case config.TemplateSourceS3:
		s3Client, err := s3infra.NewClient(ctx, cfg)
		if err != nil {
			log.Fatalf("s3 client: %v", err)
		}
		templates = s3infra.NewTemplateStore(s3Client, cfg.S3BucketName, cfg.S3TemplatePrefix)
	default:
		templates = dynamo.NewTemplateRepo(dynamoClient, cfg.DynamoTables.NotificationTemplates)
	}

	// Transports are optional; a channel without one rejects sends.
	var email message.EmailTransport
	if m, err := smtp.NewMailer(cfg); err == nil {
		email = m
	} else {
		slog.Warn("SMTP mailer not available", "err", err)
	}
	var sms message.SMSTransport
	if s, err := sns.NewSender(ctx, cfg); err == nil {
		sms = s
	} else {
		slog.Warn("SNS sender not available", "err", err)
	}

	msgSvc := message.NewService(message.ServiceDeps{
		Notifications:   notifSvc,
		Templates:       templates,
		TemplateTypes:   registrar.Templates(),
		Log:             dynamo.NewMessageRepo(dynamoClient, cfg.DynamoTables.NotificationMessages),
		Renderer:        render.NewRenderer(),
		Email:           email,
		SMS:             sms,
		DefaultLanguage: cfg.DefaultLanguage,
	})

	deps := &transporthttp.Deps{
		Notifications: notifSvc,
		Messages:      msgSvc,
		Registrar:     registrar,
	}
	// JWT verification is optional; without a key every route is public.
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		deps.Verifier = p
	} else {
		slog.Warn("JWT provider not available", "err", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(ctx, cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
