package api

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/david/goodworks/internal/catalog"
	"github.com/david/goodworks/internal/config"
	"github.com/david/goodworks/internal/logger"
	"github.com/david/goodworks/internal/matcher"
	"github.com/david/goodworks/internal/models"
	"github.com/david/goodworks/internal/opportunity"
	"github.com/david/goodworks/internal/sources"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const scopeKey = "sources.scope"

// Seeder writes the bundled catalog into the record store.
type Seeder interface {
	UpsertQuotes(ctx context.Context, quotes []models.Quote) error
	UpsertOpportunities(ctx context.Context, opps []models.Opportunity) error
	UpsertEvents(ctx context.Context, events []models.CurrentEvent) error
}

// Deps are the collaborators a Server routes requests to. Seeder may be nil
// when no record store is configured.
type Deps struct {
	Loader        sources.Loader
	Opportunities *opportunity.Service
	Matcher       *matcher.Orchestrator
	Catalog       *catalog.Catalog
	Seeder        Seeder
	Logger        *zap.Logger
}

type Server struct {
	Echo *echo.Echo

	loader        sources.Loader
	opportunities *opportunity.Service
	matcher       *matcher.Orchestrator
	catalog       *catalog.Catalog
	seeder        Seeder
	logger        *zap.Logger
	adminSecret   string
}

func NewServer(cfg config.ServerConfig, deps Deps) (*Server, error) {
	l := logger.WithComponent(deps.Logger, "api")

	secret, err := adminSecret(cfg.AdminSecret, l)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String(logger.FieldRequestID, v.RequestID),
			}
			if v.Error != nil {
				l.Warn("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			l.Info("request", fields...)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	// CORS: allow frontend origins from config or default to localhost
	allowedOrigins := cfg.CORSOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Admin-Secret"},
	}))

	s := &Server{
		Echo:          e,
		loader:        deps.Loader,
		opportunities: deps.Opportunities,
		matcher:       deps.Matcher,
		catalog:       deps.Catalog,
		seeder:        deps.Seeder,
		logger:        l,
		adminSecret:   secret,
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	api := s.Echo.Group("/api/v1")
	api.Use(s.scopeMiddleware)

	api.GET("/opportunities", s.handleListOpportunities)
	api.GET("/opportunities/featured", s.handleFeaturedOpportunities)
	api.GET("/opportunities/recommendations", s.handleRecommendations)
	api.GET("/opportunities/match/:eventId", s.handleOpportunitiesForEvent)
	api.GET("/opportunities/:id", s.handleGetOpportunity)
	api.POST("/opportunities/interest", s.handleRecordInterest)

	api.GET("/quotes", s.handleListQuotes)
	api.GET("/news", s.handleListNews)
	api.POST("/news/match", s.handleMatchNews)
	api.POST("/ask/match", s.handleAskMatch)

	// Admin Routes
	admin := api.Group("/admin")
	admin.Use(s.adminMiddleware)
	admin.POST("/seed", s.handleSeed)
}

// scopeMiddleware gives every request its own memoized view of the sources.
func (s *Server) scopeMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Set(scopeKey, sources.NewScope(s.loader))
		return next(c)
	}
}

func scopeOf(c echo.Context) *sources.Scope {
	return c.Get(scopeKey).(*sources.Scope)
}

func (s *Server) requestLogger(c echo.Context) *zap.Logger {
	return s.logger.With(zap.String(logger.FieldRequestID, c.Response().Header().Get(echo.HeaderXRequestID)))
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) Start(port string) error {
	err := s.Echo.Start(":" + port)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}

func (s *Server) adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// Check X-Admin-Secret header or Bearer token
		authHeader := c.Request().Header.Get("Authorization")
		adminHeader := c.Request().Header.Get("X-Admin-Secret")

		if adminHeader != "" && adminHeader == s.adminSecret {
			return next(c)
		}
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			if authHeader[7:] == s.adminSecret {
				return next(c)
			}
		}

		return c.JSON(http.StatusUnauthorized, envelope{Error: "Unauthorized admin access"})
	}
}

// adminSecret returns the configured secret or an ephemeral random one.
func adminSecret(configured string, l *zap.Logger) (string, error) {
	if secret := strings.TrimSpace(configured); secret != "" {
		return secret, nil
	}

	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate admin secret fallback: %w", err)
	}
	l.Warn("admin secret is not set; using ephemeral in-memory fallback secret")
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// splitCSV splits a comma-separated query parameter into trimmed non-empty strings.
func splitCSV(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
