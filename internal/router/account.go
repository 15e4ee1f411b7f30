package router

import "github.com/gin-gonic/gin"

func (r *Router) accountRoutes(version *gin.RouterGroup) {
	account := version.Group("/account")
	{
		// Public routes (no authentication required)
		account.POST("/register", r.accountHandler.Register)
		account.POST("/login", r.accountHandler.Login)
		account.POST("/forgot-password", r.accountHandler.ForgotPassword)
		account.POST("/reset-password", r.accountHandler.ResetPassword)

		// Protected routes (JWT authentication required)
		protected := account.Group("")
		protected.Use(r.jwtMw.RequireAuth())
		{
			protected.PUT("/password", r.accountHandler.ChangePassword)
			protected.DELETE("", r.accountHandler.DeleteAccount)
		}
	}
}
