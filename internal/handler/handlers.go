package handlers

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cresszm/cress/internal/audit"
	"github.com/cresszm/cress/internal/models"
	"github.com/cresszm/cress/pkg/cache"
	"github.com/cresszm/cress/pkg/config"
	"github.com/cresszm/cress/pkg/metrics"
	"github.com/cresszm/cress/pkg/middleware"
	"github.com/cresszm/cress/pkg/notification"
	"github.com/cresszm/cress/pkg/storage"
)

type Handlers struct {
	db      *gorm.DB
	store   storage.Store
	mailer  notification.Mailer
	cache   cache.Cache
	geoip   *audit.GeoIP
	limiter *middleware.RateLimiter
}

func NewHandlers(db *gorm.DB, store storage.Store, mailer notification.Mailer, c cache.Cache, geo *audit.GeoIP) *Handlers {
	return &Handlers{
		db:      db,
		store:   store,
		mailer:  mailer,
		cache:   c,
		geoip:   geo,
		limiter: middleware.NewRateLimiter(),
	}
}

// orm returns the DB bound to the request context so audit callbacks can
// attribute writes to the acting user.
func (h *Handlers) orm(c *gin.Context) *gorm.DB {
	return h.db.WithContext(c.Request.Context())
}

func (h *Handlers) Register(engine *gin.Engine) {
	cfg := config.GlobalConfig

	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionExpireDays * 24 * 3600,
		HttpOnly: true,
	})
	engine.Use(sessions.Sessions("cress_session", sessionStore))
	engine.Use(middleware.InjectDB(h.db))
	engine.Use(metrics.Middleware())

	engine.GET("/metrics", metrics.Handler())
	engine.GET("/health", h.HealthCheck)
	engine.GET("/download-apk", h.DownloadAPK)

	h.registerAuthRoutes(engine)
	h.registerWebRoutes(engine)
	h.registerAPIRoutes(engine)
}

func (h *Handlers) registerAuthRoutes(engine *gin.Engine) {
	auth := engine.Group(config.GlobalConfig.AuthPrefix)
	{
		auth.POST("/register", h.handleUserSignup)
		auth.POST("/login", h.handleUserSignin)
		auth.GET("/login", h.handleLoginPage)
		auth.GET("/logout", models.AuthRequired, h.handleUserLogout)
	}
}

func (h *Handlers) registerWebRoutes(engine *gin.Engine) {
	r := engine.Group("")
	r.Use(models.AuthRequired, models.CheckUserStatus, audit.Middleware(h.geoip))

	r.GET("/dashboard", h.Dashboard)

	users := r.Group("/users", models.AdminRequired)
	{
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUserWeb)
		users.PUT("/:id/status", h.UpdateUserStatus)
		users.PUT("/:id/role", h.UpdateUserRole)
	}

	alerts := r.Group("/alerts")
	{
		alerts.GET("", h.ListAlerts)
		alerts.GET("/stats", h.AlertStats)
		alerts.POST("", h.limiter.Limit(config.GlobalConfig.AlertRate), h.CreateAlertWeb)
		alerts.GET("/:id", h.GetAlertWeb)
		alerts.PUT("/:id", h.UpdateAlertWeb)
		alerts.DELETE("/:id", h.DeleteAlertWeb)
		alerts.POST("/:id/send", h.SendAlert)
	}

	centers := r.Group("/health-centers")
	{
		centers.GET("", h.ListCenters)
		centers.GET("/stats", h.CenterStats)
		centers.POST("", h.CreateCenterWeb)
		centers.GET("/:id", h.GetCenterWeb)
		centers.PUT("/:id", h.UpdateCenterWeb)
		centers.DELETE("/:id", h.DeleteCenterWeb)
		centers.POST("/:id/toggle-verification", h.ToggleCenterVerification)
	}

	incidents := r.Group("/incidents")
	{
		incidents.GET("", h.ListIncidents)
		incidents.GET("/stats", h.IncidentStats)
		incidents.POST("", h.CreateIncidentWeb)
		incidents.GET("/:id", h.GetIncidentWeb)
		incidents.PUT("/:id", h.UpdateIncidentWeb)
		incidents.DELETE("/:id", h.DeleteIncidentWeb)
		incidents.POST("/:id/update-status", h.UpdateIncidentStatus)
	}

	r.GET("/danger-zones", h.DangerZonesIndex)
	r.GET("/api/danger-zones/heatmap", h.DangerZonesHeatmap)
	r.GET("/api/danger-zones/clusters", h.DangerZonesClusters)
	r.GET("/api/danger-zones/stats", h.DangerZonesStats)

	r.GET("/activity-logs", models.AdminRequired, h.ListActivityLogs)

	r.POST("/upload-apk", models.AdminRequired, h.UploadAPK)
}

func (h *Handlers) registerAPIRoutes(engine *gin.Engine) {
	api := engine.Group(config.GlobalConfig.APIPrefix)

	tokens := api.Group("/auth/token")
	{
		tokens.POST("/create", h.limiter.Limit(config.GlobalConfig.TokenRate), h.CreateToken)
		tokens.GET("/verify", models.TokenRequired, h.VerifyToken)
		tokens.GET("/delete", models.TokenRequired, h.DeleteToken)
	}

	authed := api.Group("", models.TokenRequired, audit.Middleware(h.geoip))
	{
		users := authed.Group("/users")
		{
			users.GET("", h.APIListUsers)
			users.GET("/:id", h.APIGetUser)
			users.POST("", h.APICreateUser)
			users.PUT("/:id", h.APIUpdateUser)
			users.DELETE("/:id", h.APIDeleteUser)
		}

		alerts := authed.Group("/alerts")
		{
			alerts.GET("", h.APIListAlerts)
			alerts.GET("/:id", h.APIGetAlert)
			alerts.POST("", h.APICreateAlert)
			alerts.PUT("/:id", h.APIUpdateAlert)
			alerts.DELETE("/:id", h.APIDeleteAlert)
		}

		centers := authed.Group("/centers")
		{
			centers.GET("", h.APIListCenters)
			centers.GET("/filter/:filter", h.APISearchCenters)
			centers.GET("/:id", h.APIGetCenter)
			centers.POST("", h.APICreateCenter)
			centers.PUT("/:id", h.APIUpdateCenter)
			centers.DELETE("/byname/:name", h.APIDeleteCenterByName)
			centers.DELETE("/:id", h.APIDeleteCenter)
		}

		contacts := authed.Group("/contacts")
		{
			contacts.GET("", h.APIListContacts)
			contacts.GET("/:id", h.APIGetContact)
			contacts.POST("", h.APICreateContact)
			contacts.PUT("/:id", h.APIUpdateContact)
			contacts.DELETE("/:id", h.APIDeleteContact)
		}

		incidents := authed.Group("/incidents")
		{
			incidents.GET("", h.APIListIncidents)
			incidents.GET("/:id", h.APIGetIncident)
			incidents.POST("", h.APICreateIncident)
			incidents.PUT("/:id", h.APIUpdateIncident)
			incidents.DELETE("/:id", h.APIDeleteIncident)
		}

		files := authed.Group("/files")
		{
			files.GET("", h.APIListFiles)
			files.GET("/:id", h.APIGetFile)
			files.POST("", h.APICreateFile)
			files.PUT("/:id", h.APIUpdateFile)
			files.DELETE("/:id", h.APIDeleteFile)
		}

		images := authed.Group("/images")
		{
			images.GET("", h.APIListImages)
			images.GET("/:id", h.APIGetImage)
			images.POST("", h.APICreateImage)
			images.PUT("/:id", h.APIUpdateImage)
			images.DELETE("/:id", h.APIDeleteImage)
		}
	}
}
