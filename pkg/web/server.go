// Package web provides the HTTP status API with routing and middleware.
// It uses Gin framework for high-performance web handling.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/webhook"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

const (
	requestIDHeader = "X-Request-ID"
	maxTrackedIPs   = 4096
)

// Options configures the server middlewares.
type Options struct {
	// WebhookURL receives a log embed for every request. Empty disables it.
	WebhookURL string

	// AllowedHosts rejects requests whose Host does not match. nil allows all.
	AllowedHosts *regexp.Regexp

	// RateLimit is the sustained per-IP request rate. Defaults to 100/min.
	RateLimit rate.Limit
	Burst     int
}

// Server represents the web server
type Server struct {
	engine       *gin.Engine
	hook         *webhook.Hook
	allowedHosts *regexp.Regexp

	limitMu  sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
	limit    rate.Limit
	burst    int

	srvMu      sync.Mutex
	httpServer *http.Server
	closed     bool
}

var (
	server *Server
)

// Init initializes the global web server
func Init(opts Options) *Server {
	server = NewServer(opts)
	return server
}

// Get returns the global web server
func Get() *Server {
	return server
}

// NewServer creates a new web server
func NewServer(opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)

	if opts.RateLimit == 0 {
		opts.RateLimit = rate.Every(time.Minute / 100)
	}
	if opts.Burst == 0 {
		opts.Burst = 20
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	limiters, _ := lru.New[string, *rate.Limiter](maxTrackedIPs)
	s := &Server{
		engine:       engine,
		hook:         webhook.MustParseOrNil(opts.WebhookURL),
		allowedHosts: opts.AllowedHosts,
		limiters:     limiters,
		limit:        opts.RateLimit,
		burst:        opts.Burst,
	}

	// Apply middlewares
	s.engine.Use(requestIDMiddleware())
	s.engine.Use(s.logsMiddleware())
	s.engine.Use(s.rateLimitMiddleware())

	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Set up error handlers
	s.setupErrorHandlers()

	return s
}

// Engine returns the underlying Gin engine
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// requestIDMiddleware tags every request with an id, reusing the caller's.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestId", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// requestLog is copied out of the gin.Context before the webhook goroutine
// runs, since the context is recycled once the handler returns.
type requestLog struct {
	id      string
	method  string
	path    string
	ip      string
	headers http.Header
	query   string
}

// logsMiddleware logs all incoming requests and rejects unknown hosts
func (s *Server) logsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		entry := requestLog{
			id:      c.GetString("requestId"),
			method:  c.Request.Method,
			path:    c.Request.URL.Path,
			ip:      c.ClientIP(),
			headers: c.Request.Header.Clone(),
			query:   c.Request.URL.RawQuery,
		}

		if s.allowedHosts != nil && !s.allowedHosts.MatchString(c.Request.Host) {
			logger.Warn(fmt.Sprintf("[LOG] Solicitud Sospechosa: %s %s | %s", entry.method, entry.path, entry.ip), "WebServer")
			go s.sendLogToWebhook(entry, true)
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		logger.Info(fmt.Sprintf("[LOG] Nueva solicitud: %s %s", entry.method, entry.path), "WebServer")
		go s.sendLogToWebhook(entry, false)
		c.Next()
	}
}

// sendLogToWebhook sends a log embed to the request webhook
func (s *Server) sendLogToWebhook(entry requestLog, suspicious bool) {
	if s.hook == nil {
		return
	}

	title := fmt.Sprintf("💫 | Nueva solicitud al servidor web de tipo %s", entry.method)
	color := 0x00AE86
	if suspicious {
		title = fmt.Sprintf("💫 | Solicitud Sospechosa Rechazada: %s %s", entry.method, entry.path)
		color = 0xFFA500
	}

	headers, _ := json.Marshal(entry.headers)
	query := entry.query
	if query == "" {
		query = "{}"
	}

	description := fmt.Sprintf(
		"> **Ruta:** `%s`\n> **IP:** `%s`\n> **ID:** `%s`\n> **Headers:** ```%s``` \n> **Query:** ```%s```",
		entry.path, entry.ip, entry.id, truncate(string(headers), 1500), truncate(query, 500),
	)
	if err := s.hook.Send(webhook.Embed(title, description, color)); err != nil {
		logger.Debug(fmt.Sprintf("Webhook de solicitudes falló: %v", err), "WebServer")
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

// limiter returns the token bucket for ip. The least recently seen IPs are
// forgotten once maxTrackedIPs is reached.
func (s *Server) limiter(ip string) *rate.Limiter {
	s.limitMu.Lock()
	defer s.limitMu.Unlock()

	if l, ok := s.limiters.Get(ip); ok {
		return l
	}
	l := rate.NewLimiter(s.limit, s.burst)
	s.limiters.Add(ip, l)
	return l
}

// rateLimitMiddleware rejects clients that exceed their per-IP rate
func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Demasiadas solicitudes, por favor intente de nuevo más tarde.",
			})
			return
		}
		c.Next()
	}
}

// setupErrorHandlers sets up error handling routes
func (s *Server) setupErrorHandlers() {
	s.engine.HandleMethodNotAllowed = true

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "La ruta solicitada no existe.",
			"status":  404,
		})
	})

	s.engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error":   "Method Not Allowed",
			"message": "El método HTTP no está permitido para esta ruta.",
			"status":  405,
		})
	})
}

// Start serves until Shutdown is called. A clean shutdown returns nil.
func (s *Server) Start(port string) error {
	srv := &http.Server{
		Addr:              ":" + strings.TrimPrefix(port, ":"),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.srvMu.Lock()
	if s.closed {
		s.srvMu.Unlock()
		return nil
	}
	s.httpServer = srv
	s.srvMu.Unlock()

	logger.Info(fmt.Sprintf("🚀 Servidor escuchando en http://localhost:%s", port), "WebServer")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.srvMu.Lock()
	s.closed = true
	srv := s.httpServer
	s.srvMu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Router helper methods

// GET registers a GET route
func (s *Server) GET(path string, handlers ...gin.HandlerFunc) {
	s.engine.GET(path, handlers...)
}

// Group creates a new router group
func (s *Server) Group(path string, handlers ...gin.HandlerFunc) *gin.RouterGroup {
	return s.engine.Group(path, handlers...)
}
