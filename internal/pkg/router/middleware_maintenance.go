package router

import (
	"net/http"

	"github.com/samber/lo"
	"github.com/shandysiswandi/waitlist/internal/pkg/config"
)

// maintenanceAll blocks every route.
const maintenanceAll = "*"

// middlewareMaintenance answers 503 for the routes listed in
// app.maintenance.endpoints. The list is read per request so a config reload
// takes effect without a restart.
func middlewareMaintenance(cfg config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		if cfg == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			blocked := cfg.GetArray("app.maintenance.endpoints")
			if lo.Contains(blocked, maintenanceAll) || lo.Contains(blocked, routeOf(r)) {
				writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
