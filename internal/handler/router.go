package handler

import (
	"context"
	"net/http"
	"time"

	"jsmc-rsvp/internal/middleware"
	"jsmc-rsvp/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Catalog *service.CatalogService
	Picks   *service.PickListService
	Members *service.MemberService
	Imports *service.ImportService
	Rsvp    *service.RsvpService
	Reports *service.ReportService
	Auth    *service.AuthService
	Ping    func(ctx context.Context) error
}

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(svc Services, corsOrigins []string, staticDir string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID())
	corsCfg := cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Disposition", "X-New-Token", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", func(c *gin.Context) {
		if svc.Ping != nil {
			if err := svc.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": "database unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	pickH := NewPickListHandler(svc.Picks)
	catalogH := NewCatalogHandler(svc.Catalog)
	memberH := NewMemberHandler(svc.Members)
	importH := NewImportHandler(svc.Imports)
	rsvpH := NewRsvpHandler(svc.Rsvp)
	reportH := NewReportHandler(svc.Reports)
	authH := NewAuthHandler(svc.Auth)

	api := r.Group("/api")
	api.GET("/programs-catalog/open-events", catalogH.OpenEvents)
	api.POST("/search-member", memberH.Search)
	api.POST("/rsvp", rsvpH.Submit)
	api.GET("/rsvp/:code", rsvpH.Verify)
	api.GET("/rsvp/:code/qrcode", rsvpH.QRCode)
	api.PUT("/rsvp/:id", rsvpH.UpdateCounts)
	api.POST("/login", authH.Login)

	admin := api.Group("")
	if svc.Auth.Enabled() {
		admin.Use(middleware.JWTAuth(svc.Auth.Secret(), svc.Auth.TTL()))
	}
	admin.GET("/programs", pickH.ListPrograms)
	admin.POST("/programs", pickH.AddProgram)
	admin.GET("/events", pickH.ListEvents)
	admin.POST("/events", pickH.AddEvent)

	admin.GET("/programs-catalog", catalogH.ListPrograms)
	admin.POST("/programs-catalog", catalogH.AddProgram)
	admin.GET("/programs-catalog/events", catalogH.EventsForProgram)
	admin.PUT("/programs-catalog/:programId/events/:eventId/status", catalogH.UpdateStatus)
	admin.GET("/completed-events", catalogH.CompletedEvents)
	admin.POST("/completed-events", catalogH.MarkCompleted)

	admin.GET("/dashboard/stats", reportH.Dashboard)
	admin.POST("/report/rsvps/details", reportH.Details)
	admin.GET("/report/download/:programName/:eventName", reportH.Download)

	admin.POST("/update-database", importH.Upload)
	admin.POST("/update-database/preview", importH.Preview)
	admin.POST("/update-database/confirm", importH.Confirm)
	admin.DELETE("/members", memberH.DeleteAll)
	admin.POST("/clear-rsvp", rsvpH.Clear)

	if staticDir != "" {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(staticDir))))
	}
	return r
}
