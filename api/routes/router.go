package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/poornima-canteen/canteen-backend/api/controllers"
	"github.com/poornima-canteen/canteen-backend/api/middleware"
	cartsvc "github.com/poornima-canteen/canteen-backend/internal/cart"
	checkoutsvc "github.com/poornima-canteen/canteen-backend/internal/checkout"
	identitysvc "github.com/poornima-canteen/canteen-backend/internal/identity"
	menusvc "github.com/poornima-canteen/canteen-backend/internal/menu"
	notifysvc "github.com/poornima-canteen/canteen-backend/internal/notify"
	"github.com/poornima-canteen/canteen-backend/pkg/config"
	"github.com/poornima-canteen/canteen-backend/pkg/db"
	"github.com/poornima-canteen/canteen-backend/pkg/logger"
	pkgredis "github.com/poornima-canteen/canteen-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP pkgredis.Pinger,
	identityService identitysvc.Service,
	menuService menusvc.Service,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
	notifyService notifysvc.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	// The menu is browsable without signing in.
	r.Get("/api/v1/menu", controllers.MenuList(menuService, logg))

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/link", controllers.AuthLinkSend(identityService, logg))
		r.Post("/link/complete", controllers.AuthLinkComplete(identityService, logg))
		r.Get("/popup/url", controllers.AuthPopupURL(identityService, logg))
		r.Post("/popup/complete", controllers.AuthPopupComplete(identityService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(identityService, logg))

		r.Post("/auth/logout", controllers.AuthLogout(identityService, logg))
		r.Get("/auth/state", controllers.AuthState(logg))
		r.Get("/auth/events", controllers.AuthEvents(identityService.Gate(), logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartService, logg))
			r.Post("/items", controllers.CartAdd(cartService, logg))
			r.Put("/items/quantity", controllers.CartSetQuantity(cartService, logg))
			r.Delete("/items", controllers.CartRemoveItem(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", controllers.CheckoutBegin(checkoutService, logg))
			r.Post("/confirm", controllers.CheckoutConfirm(checkoutService, logg))
			r.Post("/dismiss", controllers.CheckoutDismiss(checkoutService, logg))
		})

		r.Get("/notifications", controllers.NotificationsDrain(notifyService, logg))

		r.Route("/manage", func(r chi.Router) {
			r.Use(middleware.RequireRole(identitysvc.RolePrivileged, notifyService, logg))
			r.Post("/sections", controllers.ManageSectionCreate(menuService, logg))
			r.Delete("/sections/{sectionId}", controllers.ManageSectionDelete(menuService, logg))
			r.Post("/sections/{sectionId}/items", controllers.ManageItemCreate(menuService, logg))
			r.Delete("/sections/{sectionId}/items/{itemId}", controllers.ManageItemDelete(menuService, logg))
		})
	})

	return r
}
