package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"rogu-booking/internal/domain/user"
	"rogu-booking/internal/handler/api"
	"rogu-booking/internal/handler/middleware"
	"rogu-booking/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Venue       *api.VenueHandler
	Reservation *api.ReservationHandler
	Payment     *api.PaymentHandler
	Access      *api.AccessHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, h Handlers, authMiddleware *middleware.AuthMiddleware, limiter *middleware.RateLimiter) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, h, authMiddleware, limiter)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware, limiter *middleware.RateLimiter) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	requireAdmin := []gin.HandlerFunc{authMiddleware.RequireAuth(), authMiddleware.RequireRoleAtLeast(user.RoleAdmin)}

	apiGroup := engine.Group("/api")
	{
		venues := apiGroup.Group("/venues")
		{
			addRoutes(venues, []route{
				{Method: http.MethodGet, Path: "", Handler: h.Venue.ListVenues},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Venue.GetVenue},
				{Method: http.MethodGet, Path: "/:id/slots", Handler: h.Venue.GetSlots},
				{Method: http.MethodGet, Path: "/:id/reservations", Handler: h.Venue.ListReservations, Mw: requireAdmin},
			})
		}

		reservations := apiGroup.Group("/reservations")
		reservations.Use(authMiddleware.RequireAuth())
		{
			addRoutes(reservations, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Reservation.CreateReservation},
				{Method: http.MethodGet, Path: "", Handler: h.Reservation.GetUserReservations},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Reservation.GetReservation},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Reservation.CancelReservation},
				{Method: http.MethodGet, Path: "/:id/access-qr", Handler: h.Reservation.GetAccessQR},
			})
		}

		payments := apiGroup.Group("/payments")
		payments.Use(requireAdmin...)
		{
			addRoutes(payments, []route{
				{Method: http.MethodPost, Path: "/:id/confirm", Handler: h.Payment.Confirm},
				{Method: http.MethodPost, Path: "/:id/decline", Handler: h.Payment.Decline},
			})
		}

		access := apiGroup.Group("/access")
		access.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRoleAtLeast(user.RoleController))
		{
			addRoutes(access, []route{
				{Method: http.MethodPost, Path: "/validate", Handler: h.Access.Validate},
				{Method: http.MethodPost, Path: "/check-ins", Handler: h.Access.CheckIn, Mw: []gin.HandlerFunc{limiter.Limit()}},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
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
