package http

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"singmerge/internal/application/convert/usecases"
	"singmerge/internal/domain/link"
	"singmerge/internal/infrastructure/auth"
	"singmerge/internal/infrastructure/config"
	"singmerge/internal/infrastructure/publisher"
	"singmerge/internal/infrastructure/ratelimit"
	"singmerge/internal/infrastructure/template"
	"singmerge/internal/interfaces/http/handlers"
	"singmerge/internal/interfaces/http/handlers/convert"
	"singmerge/internal/interfaces/http/middleware"
	"singmerge/internal/shared/logger"
	"singmerge/internal/shared/version"
)

// Container wires the template, use cases, handlers and middleware built from the config.
type Container struct {
	Templates      *template.TemplateLoader
	HealthHandler  *handlers.HealthHandler
	ConvertHandler *convert.Handler
	// AuthMiddleware is nil when auth.jwt_secret is empty
	AuthMiddleware *middleware.AuthMiddleware
	// RateLimiter is nil unless rate_limit and redis are both configured
	RateLimiter    *middleware.RateLimiter
	AllowedOrigins []string

	redis *redis.Client
}

// NewContainer builds every component. The template file is read here, once.
func NewContainer(ctx context.Context, cfg *config.Config, log logger.Interface) (*Container, error) {
	templates := template.NewTemplateLoader(cfg.Merge.TemplatePath, log.Named("template"))
	if err := templates.Load(); err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}

	parser := link.NewParser()
	namer := link.NewDefaultNamer()
	ucLog := log.Named("convert")

	mergeUC := usecases.NewMergeConfigUseCase(parser, namer, usecases.MergeOptions{
		ImmutableGroups: cfg.Merge.ImmutableGroups,
		Administrative:  cfg.Merge.Administrative,
	}, ucLog)
	renderUC := usecases.NewConvertLinksUseCase(parser, namer, ucLog)

	var publishUC convert.PublishConfigExecutor
	if cfg.GitHub.Enabled() {
		pub := publisher.NewGitHubPublisher(cfg.GitHub, log.Named("publisher"))
		publishUC = usecases.NewPublishConfigUseCase(mergeUC, pub, ucLog)
	} else {
		log.Infow("github publishing disabled; set github.token, github.owner and github.repo to enable it")
	}

	var authMiddleware *middleware.AuthMiddleware
	if cfg.Auth.JWTSecret != "" {
		jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
		authMiddleware = middleware.NewAuthMiddleware(jwtSvc, log.Named("auth"))
	} else if publishUC != nil {
		log.Warnw("publish endpoint is enabled without authentication; set auth.jwt_secret to protect it")
	}

	convertHandler := convert.NewHandler(mergeUC, renderUC, publishUC, templates, convert.Options{
		MaxLinks:      cfg.Merge.MaxLinks,
		OmitOnWarning: cfg.Merge.OmitOnWarning,
		DefaultTarget: usecases.PublishTarget{
			Owner:  cfg.GitHub.Owner,
			Repo:   cfg.GitHub.Repo,
			Branch: cfg.GitHub.Branch,
			Path:   cfg.GitHub.Path,
		},
		CommitMessage: cfg.GitHub.CommitMessage,
	}, log.Named("handler"))

	c := &Container{
		Templates:      templates,
		HealthHandler:  handlers.NewHealthHandler(templates, version.String()),
		ConvertHandler: convertHandler,
		AuthMiddleware: authMiddleware,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}

	if err := c.initRateLimiter(ctx, cfg, log); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Container) initRateLimiter(ctx context.Context, cfg *config.Config, log logger.Interface) error {
	if !cfg.RateLimit.Enabled() {
		return nil
	}
	if !cfg.Redis.Enabled() {
		log.Warnw("rate_limit is configured but redis.host is empty; rate limiting disabled")
		return nil
	}

	client, err := ratelimit.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	log.Infow("redis connection established",
		"address", cfg.Redis.GetAddr(),
		"requests_per_minute", cfg.RateLimit.RequestsPerMinute,
		"requests_per_hour", cfg.RateLimit.RequestsPerHour,
	)

	c.redis = client
	c.RateLimiter = middleware.NewRateLimiter(ratelimit.NewRedisLimiter(client, ratelimit.Limits{
		PerMinute: cfg.RateLimit.RequestsPerMinute,
		PerHour:   cfg.RateLimit.RequestsPerHour,
	}), log.Named("ratelimit"))
	return nil
}

// Close releases the Redis connection, if any
func (c *Container) Close() error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Close()
}
