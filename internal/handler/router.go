package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stewardflow/internal/handler/api"
	"stewardflow/internal/handler/middleware"
	"stewardflow/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	logger *middleware.Logger,
	reservationHandler *api.ReservationHandler,
	approvalHandler *api.ApprovalHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, reservationHandler, approvalHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *middleware.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(logger.LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	reservationHandler *api.ReservationHandler,
	approvalHandler *api.ApprovalHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)

	apiGroup := engine.Group("/api")
	{
		reservations := apiGroup.Group("/reservations")
		reservations.Use(authMiddleware.RequireAuth())
		{
			addRoutes(reservations, []route{
				{Method: http.MethodPost, Path: "", Handler: reservationHandler.Create},
				{Method: http.MethodGet, Path: "", Handler: reservationHandler.ListMine},
				{Method: http.MethodGet, Path: "/:id", Handler: reservationHandler.Get},
				{Method: http.MethodPost, Path: "/:id/approve", Handler: reservationHandler.Approve},
				{Method: http.MethodPost, Path: "/:id/reject", Handler: reservationHandler.Reject},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: reservationHandler.Cancel},
				{Method: http.MethodPost, Path: "/:id/return", Handler: reservationHandler.Return},
				{Method: http.MethodPost, Path: "/:id/vehicle-return", Handler: reservationHandler.VehicleReturn},
			})
		}

		policies := apiGroup.Group("/approval-policies")
		policies.Use(authMiddleware.RequireAuth())
		{
			addRoutes(policies, []route{
				{Method: http.MethodGet, Path: "/resolve", Handler: approvalHandler.Resolve},
			})
		}
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
