package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roomies/invitehub/internal/config"
	"roomies/invitehub/internal/handler/middleware"
	jwtpkg "roomies/invitehub/pkg/jwt"
)

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	jwtManager *jwtpkg.Manager,
	authHandler *AuthHandler,
	inviteHandler *InviteHandler,
	adminHandler *AdminHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.SetHTMLTemplate(InviteTemplates())

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Invite lifecycle
	r.GET("/invite/:code", inviteHandler.Landing)
	invites := r.Group("/invites")
	{
		invites.GET("/resolve", inviteHandler.Resolve)
		invites.POST("/consume", middleware.OptionalJWTAuth(jwtManager), inviteHandler.Consume)
		invites.GET("/pending", inviteHandler.Pending)
		invites.DELETE("/pending", inviteHandler.ClearPending)
	}

	if authHandler != nil {
		auth := r.Group("/api/v1/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
		}

		protected := r.Group("/api/v1")
		protected.Use(middleware.JWTAuth(jwtManager))
		{
			protected.POST("/auth/logout", authHandler.Logout)
		}
	}

	// Admin routes (JWT + admin check)
	if adminHandler != nil {
		admin := r.Group("/api/v1/admin")
		admin.Use(middleware.JWTAuth(jwtManager))
		admin.Use(middleware.AdminAuth(cfg.Admin.UserIDs))
		{
			admin.POST("/invite-codes", adminHandler.CreateInviteCode)
			admin.GET("/invite-codes", adminHandler.ListInviteCodes)
		}
	}

	return r
}
