package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/opsdesk/internal/audit"
	"github.com/BruksfildServices01/opsdesk/internal/config"
	"github.com/BruksfildServices01/opsdesk/internal/domain/registration"
	"github.com/BruksfildServices01/opsdesk/internal/handlers"
	"github.com/BruksfildServices01/opsdesk/internal/middleware"
	"github.com/BruksfildServices01/opsdesk/internal/notify"
	"github.com/BruksfildServices01/opsdesk/internal/store"
	ucAuditLog "github.com/BruksfildServices01/opsdesk/internal/usecase/auditlog"
	ucNotification "github.com/BruksfildServices01/opsdesk/internal/usecase/notification"
	ucRecord "github.com/BruksfildServices01/opsdesk/internal/usecase/record"
	ucRegistration "github.com/BruksfildServices01/opsdesk/internal/usecase/registration"
	ucSession "github.com/BruksfildServices01/opsdesk/internal/usecase/session"
)

// Deps are the process-wide singletons owned by main.
type Deps struct {
	Gateway  *store.Gateway
	Recorder *audit.Recorder
	Engine   *notify.Engine
	Bus      notify.Subscriber
	Config   *config.Config
	Log      *zap.Logger

	// Closing is closed when the server begins shutting down.
	Closing <-chan struct{}
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	gw, cfg, log := d.Gateway, d.Config, d.Log

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))

	// ======================================================
	// USE CASES: REGISTRATION
	// ======================================================
	validator := ucRegistration.NewUniquenessValidator(gw, cfg.EmailDomain)

	submitUC := ucRegistration.NewSubmitRegistration(gw, validator, d.Engine, log)
	approveUC := ucRegistration.NewApproveRegistration(gw, d.Recorder, d.Engine, cfg.EmailDomain, log)
	rejectUC := ucRegistration.NewRejectRegistration(gw, d.Recorder, d.Engine, log)
	listPendingUC := ucRegistration.NewListPending(gw)

	// ======================================================
	// USE CASES: RECORDS / SESSIONS / AUDIT
	// ======================================================
	clients := ucRecord.NewService(gw.Clients, d.Recorder, ucRecord.ClientOptions(), log)
	products := ucRecord.NewService(gw.Products, d.Recorder, ucRecord.ProductOptions(), log)
	users := ucRecord.NewService(gw.Users, d.Recorder, ucRecord.UserOptions(), log)

	loginUC := ucSession.NewLogin(gw, d.Recorder, cfg.EmailDomain, log)
	logoutUC := ucSession.NewLogout(loginUC)

	listAuditUC := ucAuditLog.NewListAuditLogs(gw.AuditLogs)
	auditStatsUC := ucAuditLog.NewAuditStats(gw.AuditLogs)

	inbox := ucNotification.NewInbox(gw.Notifications)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(loginUC, logoutUC, cfg)
	meHandler := handlers.NewMeHandler(users)
	registrationHandler := handlers.NewRegistrationHandler(submitUC, approveUC, rejectUC, listPendingUC)
	clientHandler := handlers.NewClientHandler(clients)
	productHandler := handlers.NewProductHandler(products)
	userHandler := handlers.NewUserHandler(users)
	auditLogsHandler := handlers.NewAuditLogsHandler(listAuditUC, auditStatsUC, cfg.Timezone)
	notificationHandler := handlers.NewNotificationHandler(inbox, d.Bus, d.Closing, log)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		api.POST("/registrations", registrationHandler.Submit)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// AUTHENTICATED
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg, gw.Users))
		{
			secured.POST("/auth/logout", authHandler.Logout)
			secured.GET("/me", meHandler.GetMe)

			secured.GET("/me/notifications", notificationHandler.List)
			secured.GET("/me/notifications/unread-count", notificationHandler.UnreadCount)
			secured.PATCH("/me/notifications/:id/read", notificationHandler.MarkRead)
			secured.POST("/me/notifications/read-all", notificationHandler.MarkAllRead)
			secured.GET("/me/notifications/stream", notificationHandler.Stream)

			secured.GET("/clients", clientHandler.List)
			secured.POST("/clients", clientHandler.Create)
			secured.PATCH("/clients/:id", clientHandler.Update)
			secured.DELETE("/clients/:id", clientHandler.Delete)
			secured.POST("/clients/bulk", clientHandler.BulkCreate)
			secured.POST("/clients/bulk-delete", clientHandler.BulkDelete)

			secured.GET("/products", productHandler.List)
			secured.POST("/products", productHandler.Create)
			secured.PATCH("/products/:id", productHandler.Update)
			secured.DELETE("/products/:id", productHandler.Delete)

			// ------------------------------
			// ADMIN / MANAGER
			// ------------------------------
			admin := secured.Group("/admin")
			admin.Use(middleware.RequireRoles(registration.ElevatedRoleNames()...))
			{
				admin.GET("/registrations", registrationHandler.ListPending)
				admin.POST("/registrations/:id/approve", registrationHandler.Approve)
				admin.POST("/registrations/:id/reject", registrationHandler.Reject)

				admin.GET("/audit-logs", auditLogsHandler.List)
				admin.GET("/audit-logs/stats", auditLogsHandler.Stats)

				admin.GET("/users", userHandler.List)

				adminOnly := admin.Group("/")
				adminOnly.Use(middleware.RequireRoles(string(registration.RoleAdmin)))
				{
					adminOnly.PATCH("/users/:id", userHandler.Update)
					adminOnly.DELETE("/users/:id", userHandler.Delete)
				}
			}
		}
	}
}
