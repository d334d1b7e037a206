// Package app wires configuration, stores and services into a runnable
// service. Both binaries build on it.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Sinanalungal/Image-Generator-Backend/internal/command"
	"github.com/Sinanalungal/Image-Generator-Backend/internal/config"
	"github.com/Sinanalungal/Image-Generator-Backend/internal/handler"
	"github.com/Sinanalungal/Image-Generator-Backend/internal/imagegen"
	"github.com/Sinanalungal/Image-Generator-Backend/internal/migrations"
	"github.com/Sinanalungal/Image-Generator-Backend/internal/query"
	"github.com/Sinanalungal/Image-Generator-Backend/internal/repository"
	"github.com/Sinanalungal/Image-Generator-Backend/internal/storage"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/events"
	sharedredis "github.com/Sinanalungal/Image-Generator-Backend/shared/redis"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/tokens"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/validation"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const auditGroup = "account-audit-group"

type App struct {
	Config   *config.Config
	Log      *zap.Logger
	Commands *command.AccountCommandService
	Accounts *query.AccountQueryService
	Auth     *query.AuthQueryService
	Issuer   *tokens.Issuer
	Images   imagegen.Generator

	db    *sql.DB
	redis *sharedredis.Client
}

func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log}

	repo, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	var cache goredis.Cmdable
	var publisher command.EventPublisher = events.NopPublisher{}
	if cfg.Redis.Addr != "" {
		a.redis, err = sharedredis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			a.Close()
			return nil, err
		}
		cache = a.redis.Client
		publisher = events.NewPublisher(a.redis.Client, cfg.Redis.StreamMaxLen)
	} else {
		log.Warn("redis disabled; listing cache and account events are off")
	}

	images, err := storage.NewS3ImageStore(ctx, cfg.S3)
	if err != nil {
		a.Close()
		return nil, err
	}
	policy, err := validation.NewPasswordPolicy(cfg.Password)
	if err != nil {
		a.Close()
		return nil, err
	}

	readRepo := repository.NewAccountReadRepository(repo, cache, cfg.Redis.ListingTTL, images.URL, log)
	a.Commands = command.NewAccountCommandService(repo, readRepo, publisher, images,
		validation.NewAccountSchema(), policy, cfg.MaxUploadBytes, log.Named("commands"))
	a.Accounts = query.NewAccountQueryService(repo, readRepo)
	a.Issuer = tokens.NewIssuer(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	a.Auth = query.NewAuthQueryService(repo, a.Issuer, images.URL)
	a.Images = imagegen.NewOpenAIGenerator(cfg.OpenAI)
	return a, nil
}

func (a *App) openStore(ctx context.Context) (repository.AccountRepository, error) {
	if a.Config.StoreBackend == config.StoreBackendMemory {
		a.Log.Warn("using in-memory account store; data is lost on exit")
		return repository.NewMemoryAccountRepository(), nil
	}

	db, err := sql.Open("postgres", a.Config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := migrations.Up(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	a.db = db
	return repository.NewAccountWriteRepository(db), nil
}

func (a *App) Router() *gin.Engine {
	return handler.NewRouter(handler.Handlers{
		Users:  handler.NewUserHandler(a.Commands, a.Accounts),
		Admin:  handler.NewAdminHandler(a.Commands, a.Accounts),
		Auth:   handler.NewAuthHandler(a.Auth),
		Images: handler.NewImageHandler(a.Images),
	}, a.Issuer, a.Log.Named("http"))
}

// RunAuditSubscriber blocks until ctx is done. Without Redis it returns at once.
func (a *App) RunAuditSubscriber(ctx context.Context, consumer string) {
	if a.redis == nil {
		return
	}
	subscriber := events.NewSubscriber(a.redis.Client, events.SubscriberConfig{
		Group:    auditGroup,
		Consumer: consumer,
		Stream:   events.AccountEventsStream,
		Handler:  a.Commands.HandleAccountEvent,
		Logger:   a.Log.Named("audit"),
	})
	if err := subscriber.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		a.Log.Error("subscriber stopped", zap.Error(err))
	}
}

func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
