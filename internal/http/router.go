package api

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"

	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/config"
	h "github.com/Steven-zx/Grove-Web-Application-sub001/internal/http/handlers"
	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/http/middleware"
)

func NewRouter(deps config.Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(deps.Env.CORSAllowedOrigins))
	r.MaxMultipartMemory = 8 << 20

	_ = r.SetTrustedProxies(nil)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	system := h.SystemHandler{Deps: deps}
	auth := h.AuthHandler{Deps: deps}
	payments := h.PaymentHandler{Deps: deps}
	bookings := h.BookingHandler{Deps: deps}
	announcements := h.AnnouncementHandler{Deps: deps}
	visitors := h.VisitorHandler{Deps: deps}
	concerns := h.ConcernHandler{Deps: deps}

	api := r.Group("/api")
	{
		api.GET("/health", system.Health)
		api.GET("/db-check", system.DBCheck)

		api.POST("/auth/register", auth.Register)
		api.POST("/auth/login", auth.Login)

		// Announcements are public reads
		api.GET("/announcements", announcements.List)
		api.GET("/announcements/:id", announcements.Get)

		authed := api.Group("", middleware.RequireAuth(deps.Env.JWTSecret))
		{
			authed.GET("/auth/me", auth.Me)

			b := authed.Group("/bookings")
			b.POST("", bookings.Create)
			b.GET("", bookings.List)
			b.GET("/:id", bookings.Get)
			b.POST("/:id/cancel", bookings.Cancel)

			p := authed.Group("/payments/manual")
			p.GET("/info", payments.Info)
			p.POST("/upload-proof", payments.UploadProof)
			p.GET("/status", payments.Status)
			p.GET("/:id/receipt", payments.Receipt)

			v := authed.Group("/visitors")
			v.POST("", visitors.Create)
			v.GET("", visitors.List)
			v.GET("/:id/gate-pass", visitors.GatePass)

			cn := authed.Group("/concerns")
			cn.POST("", concerns.Create)
			cn.GET("", concerns.List)
		}

		admin := api.Group("/admin", middleware.RequireAuth(deps.Env.JWTSecret), middleware.RequireAdmin())
		{
			admin.GET("/payments/manual", payments.AdminList)
			admin.POST("/payments/manual/review", payments.Review)

			admin.GET("/bookings", bookings.AdminList)

			admin.POST("/announcements", announcements.Create)
			admin.PUT("/announcements/:id", announcements.Update)
			admin.DELETE("/announcements/:id", announcements.Delete)

			admin.GET("/visitors", visitors.AdminList)

			admin.GET("/concerns", concerns.AdminList)
			admin.PUT("/concerns/:id/status", concerns.UpdateStatus)
		}
	}

	return r
}
