// Package devserver is a self-contained implementation of the blog REST
// API, used for local development and integration tests. It mirrors the
// remote deployment's observable behavior: SimpleJWT-shaped HS256
// tokens, DRF-shaped validation error bodies, and both the `/auth/X/`
// and legacy `/X/` route families.
package devserver

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/openpress/quill/internal/config"
	"github.com/openpress/quill/internal/token"
)

// Server is the fixture API server
type Server struct {
	cfg      *config.DevServerConfig
	accounts AccountStore
	content  *ContentStore
	signer   *token.Signer
	denylist *Denylist // nil when revocation is disabled
	limiter  *LoginLimiter
	logger   *zap.Logger
}

// NewServer wires a fixture server. denylist may be nil.
func NewServer(cfg *config.DevServerConfig, accounts AccountStore, denylist *Denylist, logger *zap.Logger) *Server {
	return &Server{
		cfg:      cfg,
		accounts: accounts,
		content:  NewContentStore(),
		signer:   token.NewSigner(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL),
		denylist: denylist,
		limiter:  NewLoginLimiter(cfg.RateLimit.Window, cfg.RateLimit.MaxAttempts),
		logger:   logger,
	}
}

// Content exposes the content store for seeding
func (s *Server) Content() *ContentStore {
	return s.content
}

// Signer exposes the token signer; tests use it to mint expired tokens
func (s *Server) Signer() *token.Signer {
	return s.signer
}

// Router builds the gin engine with all routes registered
func (s *Server) Router() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(recovery(s.logger))
	router.Use(requestLogger(s.logger))
	router.Use(metrics())

	router.GET("/health", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api")
	{
		// Both route conventions are live; clients probe them in order
		apiGroup.POST("/auth/register/", s.handleRegister)
		apiGroup.POST("/register/", s.handleRegister)
		apiGroup.POST("/auth/login/", s.handleLogin)
		apiGroup.POST("/login/", s.handleLogin)
		apiGroup.POST("/auth/token/refresh/", s.handleRefresh)
		apiGroup.POST("/token/refresh/", s.handleRefresh)

		authed := apiGroup.Group("")
		authed.Use(s.authRequired())
		{
			authed.POST("/auth/logout/", s.handleLogout)
			authed.PATCH("/auth/profile/", s.handleUpdateOwnProfile)

			authed.GET("/profiles/", s.handleListProfiles)
			authed.GET("/profiles/:id/", s.handleGetProfile)
			authed.PATCH("/profiles/:id/", s.handlePatchProfile)
			authed.PATCH("/profiles/:id/change-user-type/", s.handleChangeUserType)

			authed.POST("/articles/", s.handleCreateArticle)
			authed.PUT("/articles/:id/", s.handleUpdateArticle)
			authed.DELETE("/articles/:id/", s.handleDeleteArticle)

			authed.POST("/categories/", s.handleCreateCategory)
			authed.DELETE("/categories/:id/", s.handleDeleteCategory)

			authed.POST("/tags/", s.handleCreateTag)
			authed.DELETE("/tags/:id/", s.handleDeleteTag)

			authed.POST("/comments/", s.handleCreateComment)
			authed.DELETE("/comments/:id/", s.handleDeleteComment)
		}

		apiGroup.GET("/articles/", s.handleListArticles)
		apiGroup.GET("/articles/:id/", s.handleGetArticle)
		apiGroup.GET("/categories/", s.handleListCategories)
		apiGroup.GET("/tags/", s.handleListTags)
		apiGroup.GET("/comments/", s.handleListComments)
	}

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
