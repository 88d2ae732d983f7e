package mockhttp

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sophiebushman1/jwt-pizza/internal/fixture"
)

// Server exposes a fixture.Backend over real HTTP so the pizza front-end can
// be developed against the mock without a browser harness in the way. The
// interception tests never go through here; they bind the backend straight
// into the page.
type Server struct {
	backend *fixture.Backend
	engine  *gin.Engine
	metrics *serverMetrics
	orders  *OrderLog
}

// ServerOption customizes a Server at construction time.
type ServerOption func(*Server)

// WithOrderLog persists every accepted order into log. The caller keeps
// ownership and closes it.
func WithOrderLog(log *OrderLog) ServerOption {
	return func(s *Server) { s.orders = log }
}

// NewServer wires backend into a gin engine with the standard middleware
// chain: recovery, request IDs, permissive CORS. Anything that is not
// /healthz or /metrics falls through to the fixture dispatch.
func NewServer(backend *fixture.Backend, opts ...ServerOption) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		backend: backend,
		metrics: newServerMetrics(),
	}
	for _, o := range opts {
		o(s)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), cors())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(s.metrics.handler()))
	engine.NoRoute(s.dispatch)

	s.engine = engine
	return s
}

// Handler returns the server as an http.Handler for httptest or http.Server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) dispatch(c *gin.Context) {
	start := time.Now()

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable request body"})
		return
	}

	resp, err := s.backend.Handle(fixture.Request{
		Method: c.Request.Method,
		URL:    c.Request.URL.RequestURI(),
		Body:   body,
	})
	if err != nil {
		if errors.Is(err, fixture.ErrNoRoute) {
			s.metrics.observe("unmatched", c.Request.Method, http.StatusNotFound, time.Since(start))
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if s.orders != nil && resp.Route == "/api/order" && resp.Status == http.StatusOK {
		if err := s.orders.Record(c.Request.Context(), resp.Route, body); err != nil {
			// The order still succeeded from the client's point of view.
			c.Error(err)
		}
	}

	s.metrics.observe(resp.Route, c.Request.Method, resp.Status, time.Since(start))
	c.Data(resp.Status, resp.ContentType, resp.Body)
}

// requestID tags every request with an X-Request-ID, honoring one supplied by
// the client.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// cors answers preflights and marks every response, since the Vite dev server
// and the mock run on different origins.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
