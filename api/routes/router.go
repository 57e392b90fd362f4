package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/evmotors/dealerhub-backend/api/controllers"
	appointmentcontrollers "github.com/evmotors/dealerhub-backend/api/controllers/appointments"
	ordercontrollers "github.com/evmotors/dealerhub-backend/api/controllers/orders"
	"github.com/evmotors/dealerhub-backend/api/middleware"
	"github.com/evmotors/dealerhub-backend/internal/appointments"
	"github.com/evmotors/dealerhub-backend/internal/auth"
	"github.com/evmotors/dealerhub-backend/internal/dealers"
	"github.com/evmotors/dealerhub-backend/internal/orders"
	"github.com/evmotors/dealerhub-backend/internal/users"
	"github.com/evmotors/dealerhub-backend/internal/vehicles"
	"github.com/evmotors/dealerhub-backend/pkg/auth/session"
	"github.com/evmotors/dealerhub-backend/pkg/config"
	"github.com/evmotors/dealerhub-backend/pkg/db"
	"github.com/evmotors/dealerhub-backend/pkg/enums"
	"github.com/evmotors/dealerhub-backend/pkg/logger"
	"github.com/evmotors/dealerhub-backend/pkg/redis"
)

// Deps bundles everything the router needs wired in.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	SessionManager session.AccessSessionChecker
	Registry       *prometheus.Registry

	AuthService         auth.Service
	RegisterService     auth.RegisterService
	UsersRepo           *users.Repository
	UsersService        users.Service
	VehiclesService     vehicles.Service
	DealersService      dealers.Service
	OrdersService       orders.Service
	AppointmentsService appointments.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginNameLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.RegisterService, deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Get("/me", controllers.Me(deps.UsersRepo, logg))

		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", controllers.VehicleList(deps.VehiclesService, false, logg))
			r.Get("/{vehicleId}", controllers.VehicleDetail(deps.VehiclesService, logg))
		})

		r.Route("/dealers", func(r chi.Router) {
			r.Get("/", controllers.DealerList(deps.DealersService, logg))
			r.Get("/{dealerId}", controllers.DealerDetail(deps.DealersService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", ordercontrollers.Create(deps.OrdersService, logg))
			r.Get("/", ordercontrollers.List(deps.OrdersService, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(deps.OrdersService, logg))
			r.Get("/{orderId}/history", ordercontrollers.History(deps.OrdersService, logg))
			r.Post("/{orderId}/reject", ordercontrollers.Reject(deps.OrdersService, logg))
			r.Post("/{orderId}/pay", ordercontrollers.Pay(deps.OrdersService, logg))
		})

		r.Route("/appointments", func(r chi.Router) {
			r.Post("/", appointmentcontrollers.Create(deps.AppointmentsService, logg))
			r.Get("/", appointmentcontrollers.List(deps.AppointmentsService, logg))
			r.Get("/availability", appointmentcontrollers.Availability(deps.AppointmentsService, logg))
			r.Get("/{appointmentId}", appointmentcontrollers.Detail(deps.AppointmentsService, logg))
			r.Post("/{appointmentId}/cancel", appointmentcontrollers.Cancel(deps.AppointmentsService, logg))
		})

		r.Route("/staff", func(r chi.Router) {
			r.Use(middleware.RequireStaff(logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordercontrollers.StaffList(deps.OrdersService, logg))
				r.Get("/stats", ordercontrollers.SalesStats(deps.OrdersService, logg))
				r.Post("/{orderId}/confirm", ordercontrollers.Confirm(deps.OrdersService, logg))
				r.Post("/{orderId}/cancel", ordercontrollers.Cancel(deps.OrdersService, logg))
			})

			r.Route("/appointments", func(r chi.Router) {
				r.Get("/", appointmentcontrollers.StaffList(deps.AppointmentsService, logg))
				r.Post("/{appointmentId}/confirm", appointmentcontrollers.Confirm(deps.AppointmentsService, logg))
				r.Post("/{appointmentId}/cancel", appointmentcontrollers.Cancel(deps.AppointmentsService, logg))
				r.Post("/{appointmentId}/complete", appointmentcontrollers.Complete(deps.AppointmentsService, logg))
			})

			r.Route("/vehicles", func(r chi.Router) {
				r.Get("/", controllers.VehicleList(deps.VehiclesService, true, logg))
				r.Post("/", controllers.VehicleCreate(deps.VehiclesService, logg))
				r.Patch("/{vehicleId}", controllers.VehicleUpdate(deps.VehiclesService, logg))
				r.Delete("/{vehicleId}", controllers.VehicleDeactivate(deps.VehiclesService, logg))
			})

			r.Route("/dealers", func(r chi.Router) {
				r.Post("/", controllers.DealerCreate(deps.DealersService, logg))
				r.Patch("/{dealerId}", controllers.DealerUpdate(deps.DealersService, logg))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.RoleAdmin, logg))

			r.Route("/users", func(r chi.Router) {
				r.Get("/", controllers.AdminUserList(deps.UsersService, logg))
				r.Get("/{userId}", controllers.AdminUserDetail(deps.UsersService, logg))
				r.Post("/{userId}/activation", controllers.AdminUserActivation(deps.UsersService, logg))
			})

			r.Delete("/dealers/{dealerId}", controllers.DealerDelete(deps.DealersService, logg))
		})
	})

	return r
}
