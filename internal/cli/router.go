package cli

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"tenant-portal/internal/handlers"
	"tenant-portal/internal/middleware"
	"tenant-portal/internal/models"
	"tenant-portal/internal/observability"
	"tenant-portal/internal/telemetry"
	"tenant-portal/internal/ws"
)

// Routes groups everything the HTTP router dispatches to.
type Routes struct {
	ServiceName string
	DebugRoutes bool

	Sessions  middleware.SessionResolver
	Emitter   *telemetry.Emitter
	Auth      *handlers.AuthHandler
	Profile   *handlers.ProfileHandler
	Issues    *handlers.IssueHandler
	Requests  *handlers.RequestHandler
	Dashboard *handlers.DashboardHandler
	Chat      *handlers.ChatHandler
	ChatWS    *ws.ChatWebSocketHandler
}

// NewRouter wires middleware and routes.
func NewRouter(r Routes) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(r.ServiceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterDebugRoutes(router, r.Emitter, r.DebugRoutes)

	router.POST("/signup", r.Auth.SignUp)
	router.POST("/login", r.Auth.Login)

	authed := router.Group("/", middleware.AuthMiddleware(r.Sessions))
	authed.POST("/logout", r.Auth.Logout)
	authed.GET("/profile", r.Profile.GetProfile)
	authed.PUT("/profile", r.Profile.UpdateProfile)

	authed.GET("/chats", r.Chat.ListChats)
	authed.GET("/chats/:chat_id/messages", r.Chat.GetChatMessages)
	authed.POST("/chats/:chat_id/messages", r.Chat.PostChatMessage)

	tenant := authed.Group("/", middleware.RequireRole(models.RoleTenant))
	tenant.GET("/tenant/dashboard", r.Dashboard.TenantDashboard)
	tenant.POST("/issues/classify", r.Issues.ClassifyPhoto)
	tenant.POST("/issues", r.Issues.CreateIssue)
	tenant.POST("/tenant/issues/:issue_id/resolve", r.Issues.ResolveIssue)
	tenant.GET("/tenant/issues/:issue_id/report", r.Issues.DownloadReport)
	tenant.POST("/tenant/requests/:request_id/accept", r.Requests.AcceptRequest)

	landlord := authed.Group("/", middleware.RequireRole(models.RoleLandlord))
	landlord.GET("/landlord/dashboard", r.Dashboard.LandlordDashboard)
	landlord.POST("/landlord/requests", r.Requests.SendRequest)

	// browsers cannot set headers on websocket upgrades, the handler reads ?token=
	router.GET("/ws/chats/:chat_id", r.ChatWS.Handle)

	return router
}
