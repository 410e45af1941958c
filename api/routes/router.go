package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/astrein-exzellent/lagerhub-backend/api/controllers"
	"github.com/astrein-exzellent/lagerhub-backend/api/middleware"
	"github.com/astrein-exzellent/lagerhub-backend/internal/auth"
	"github.com/astrein-exzellent/lagerhub-backend/internal/exports"
	"github.com/astrein-exzellent/lagerhub-backend/internal/inventory"
	"github.com/astrein-exzellent/lagerhub-backend/internal/movements"
	"github.com/astrein-exzellent/lagerhub-backend/internal/reservations"
	"github.com/astrein-exzellent/lagerhub-backend/internal/support"
	"github.com/astrein-exzellent/lagerhub-backend/internal/users"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/auth/session"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/config"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/db"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/enums"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/logger"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	authService auth.Service,
	inventoryService inventory.Service,
	reservationService reservations.Service,
	movementsRepo movements.Repository,
	exportService exports.Service,
	userService users.Service,
	supportService support.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	// A typed-nil *redis.Client must not reach the middleware as a
	// non-nil interface value.
	var idempotencyStore redis.IdempotencyStore
	var rateLimitStore middleware.RateLimiterStore
	var redisPinger redis.Pinger
	if redisClient != nil {
		idempotencyStore = redisClient
		rateLimitStore = redisClient
		redisPinger = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, rateLimitStore, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
		r.Post("/logout", controllers.AuthLogout(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/items", func(r chi.Router) {
			r.Get("/", controllers.ListItems(inventoryService, logg))
			r.Post("/", controllers.CreateItem(inventoryService, logg))
			r.Get("/{itemID}", controllers.GetItem(inventoryService, logg))
			r.Patch("/{itemID}", controllers.UpdateItem(inventoryService, logg))
			r.Delete("/{itemID}", controllers.DeleteItem(inventoryService, logg))
			r.Post("/{itemID}/receipt", controllers.ItemReceipt(inventoryService, logg))
			r.Post("/{itemID}/issue", controllers.ItemIssue(inventoryService, logg))
		})

		r.Route("/reservations", func(r chi.Router) {
			r.Get("/", controllers.ListReservations(reservationService, logg))
			r.Post("/", controllers.CreateReservation(reservationService, logg))
			r.Get("/history", controllers.ListReservationHistory(reservationService, logg))
			r.Post("/{reservationID}/fulfill", controllers.FulfillReservation(reservationService, logg))
			r.Post("/{reservationID}/cancel", controllers.CancelReservation(reservationService, logg))
		})

		r.With(middleware.RequireRole(string(enums.RoleAdmin), logg)).
			Get("/movements", controllers.ListMovements(movementsRepo, logg))

		r.Route("/exports", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.RoleAdmin), logg))
			r.Get("/items", controllers.ExportItemsCSV(exportService, logg))
			r.Get("/movements", controllers.ExportMovementsCSV(exportService, logg))
		})

		r.Route("/employees", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.RoleAdmin), logg))
			r.Get("/", controllers.ListEmployees(userService, logg))
			r.Post("/", controllers.RegisterEmployee(userService, logg))
			r.Patch("/{userID}/role", controllers.ChangeEmployeeRole(userService, logg))
			r.Patch("/{userID}/active", controllers.SetEmployeeActive(userService, logg))
		})

		r.Route("/support/tickets", func(r chi.Router) {
			r.Get("/", controllers.ListTickets(supportService, logg))
			r.Post("/", controllers.CreateTicket(supportService, logg))
			r.Get("/{ticketID}/messages", controllers.ListTicketMessages(supportService, logg))
			r.Post("/{ticketID}/messages", controllers.PostTicketMessage(supportService, logg))
			r.Patch("/{ticketID}/status", controllers.UpdateTicketStatus(supportService, logg))
		})
	})

	return r
}
