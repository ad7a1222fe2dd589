package gateway

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lslt/portal-services/internal/observability"
)

// corsMaxAge is how long browsers may cache preflight results, in
// seconds.
const corsMaxAge = 300

// newRouter assembles the chi router with the shared middleware stack
// and one route group per service.
func newRouter(cfg Config, logger observability.Logger, metrics observability.MetricsRecorder) chi.Router {
	printHandler := NewPrintHandler(cfg.Printers, logger)
	unifiHandler := NewUniFiHandler(cfg.Controller, logger)
	emailHandler := NewEmailHandler(cfg.Email, cfg.Queue, logger)
	healthHandler := NewHealthHandler(cfg.Controller, cfg.Printers, cfg.Email)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(logger, metrics))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           corsMaxAge,
	}))

	r.Get("/health", healthHandler.Health)

	r.Route("/print", func(r chi.Router) {
		r.Post("/receipt", printHandler.Receipt)
		r.Post("/voucher", printHandler.Voucher)
		r.Post("/report", printHandler.Report)
		r.Get("/status", printHandler.Status)
		r.Post("/test/{printer_id}", printHandler.Test)
	})

	r.Route("/unifi", func(r chi.Router) {
		r.Post("/block-device", unifiHandler.Block)
		r.Post("/unblock-device", unifiHandler.Unblock)
		r.Post("/authorize-device", unifiHandler.Authorize)
		r.Get("/device-status/{mac_address}", unifiHandler.DeviceStatus)
		r.Get("/blocked-devices", unifiHandler.BlockedDevices)
		r.Get("/network-stats", unifiHandler.NetworkStats)
	})

	r.Route("/email", func(r chi.Router) {
		r.Post("/send", emailHandler.Send)
		r.Post("/send-voucher", emailHandler.SendVoucher)
		r.Post("/send-campaign", emailHandler.SendCampaign)
		r.Post("/test", emailHandler.Test)
		r.Get("/stats", emailHandler.Stats)
	})

	return r
}
