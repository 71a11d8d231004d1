// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"techigem/internal/delivery/http/middleware"
	"techigem/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	userHandler    *handler.UserHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		userHandler:    params.UserHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	api := e.Group("/api")

	// Password auth surface
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", r.userHandler.RegisterUser)
		authGroup.POST("/login", r.userHandler.Login)
		authGroup.POST("/refresh", r.userHandler.RefreshToken)
		authGroup.POST("/logout", r.userHandler.Logout)
	}

	// Instagram OAuth flow; both endpoints answer with redirects
	instagramGroup := api.Group("/auth/instagram")
	{
		instagramGroup.GET("/login", r.authHandler.InstagramLogin)
		instagramGroup.GET("/callback", r.authHandler.InstagramCallback)
	}

	// Dashboard API, JWT verified server-side on every request
	me := api.Group("/me")
	me.Use(r.authMiddleware.Authenticate)
	{
		me.GET("", r.userHandler.Me)
	}
}
