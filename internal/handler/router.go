package handler

import (
	"log/slog"
	"net/http"

	"binbuddy/internal/middleware"
	"binbuddy/internal/service"

	"github.com/gin-gonic/gin"
)

// RouterOptions collects what the HTTP surface depends on
type RouterOptions struct {
	AuthService     service.AuthService
	Ping            PingFunc
	CORSAllowOrigin string
	Logger          *slog.Logger
}

// NewRouter wires middlewares and routes into a gin engine
func NewRouter(opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery(opts.Logger), middleware.RequestLogger(opts.Logger), middleware.CORS(opts.CORSAllowOrigin))

	jwtAuthMW := middleware.JWTAuthMiddleware(opts.AuthService, opts.Logger)
	adminRoleMW := middleware.AdminMiddleware()

	authHandler := NewAuthHandler(opts.AuthService, opts.Logger)
	apiGroup := router.Group("/api")
	authHandler.RegisterAuthRoutes(apiGroup, jwtAuthMW)
	authHandler.RegisterAdminRoutes(apiGroup, jwtAuthMW, adminRoleMW)

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Backend is running!")
	})
	if opts.Ping != nil {
		router.GET("/health", Health(opts.Ping))
	}
	return router
}
