package routes

import (
	"local-services-api/handlers"
	"local-services-api/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine) {
	// ── Auth (dual portals) ────────────────────────────────────────
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/business/register", handlers.BusinessRegister)
		auth.POST("/login", handlers.Login)
		auth.POST("/business/login", handlers.BusinessLogin)
		auth.POST("/refresh", handlers.Refresh)
		auth.POST("/logout", handlers.Logout)
		auth.GET("/me", middleware.RequireUser(), handlers.Me)
	}

	// ── Business listings ──────────────────────────────────────────
	business := r.Group("/api/business")
	{
		// Public browsing
		business.GET("", handlers.ListBusinesses)
		business.GET("/type/:businessType", handlers.ListBusinessesByType)
		business.GET("/location/:city", handlers.ListBusinessesByCity)
		business.GET("/featured/verified", handlers.ListVerifiedBusinesses)
		// Detail shows non-active listings to owners and admins only
		business.GET("/:id", middleware.OptionalPrincipal(), handlers.GetBusiness)

		// Owner operations
		business.POST("", middleware.RequireUser(), handlers.CreateBusiness)
		business.GET("/owner/my-business", middleware.RequireUser(), handlers.GetMyBusiness)
		business.PUT("/:id", middleware.RequireUser(), handlers.UpdateBusiness)
		business.DELETE("/:id", middleware.RequireUser(), handlers.DeleteBusiness)
	}

	// ── Admin console ──────────────────────────────────────────────
	admin := r.Group("/api/admin")
	{
		admin.POST("/login", handlers.AdminLogin)

		moderation := admin.Group("")
		moderation.Use(middleware.RequireAdmin())
		{
			moderation.GET("/dashboard-stats", handlers.DashboardStats)
			moderation.GET("/service-providers", handlers.ListServiceProviders)
			moderation.PATCH("/service-providers/:id/status", handlers.UpdateBusinessStatus)
			moderation.DELETE("/service-providers/:id", handlers.HardDeleteBusiness)
			moderation.GET("/reviews", handlers.ListReviews)
			moderation.PATCH("/reviews/:id/status", handlers.UpdateReviewStatus)
			moderation.GET("/complaints", handlers.ListComplaints)
			moderation.GET("/profile", handlers.AdminProfile)
			moderation.POST("/logout", handlers.AdminLogout)
		}
	}

	// ── Docs ───────────────────────────────────────────────────────
	r.GET("/api/state-machine", handlers.GetStateMachineInfo)
	r.GET("/api/business-types", handlers.GetBusinessTypes)
}
