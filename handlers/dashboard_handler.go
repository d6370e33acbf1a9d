package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mvavassori/traffic-insights/services"
	"github.com/mvavassori/traffic-insights/utils"
)

// GetDashboard serves the headline metrics. The active visitor window can be
// overridden with ?window=<minutes>.
func GetDashboard(engine *services.Engine, window time.Duration, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		minutes, err := utils.ExtractPositiveIntFromQuery(r, "window", int(window/time.Minute))
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, err)
			return
		}

		dashboard, err := engine.Dashboard(r.Context(), time.Duration(minutes)*time.Minute)
		if err != nil {
			writeError(w, r, logger, "Failed to compute dashboard", err)
			return
		}

		utils.WriteJSON(w, http.StatusOK, newDashboardResponse(dashboard))
	}
}

// GetCharts serves the grouped breakdowns. The number of top pages can be
// overridden with ?limit=<n>.
func GetCharts(engine *services.Engine, topPagesLimit int, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := utils.ExtractPositiveIntFromQuery(r, "limit", topPagesLimit)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, err)
			return
		}

		charts, err := engine.Charts(r.Context(), limit)
		if err != nil {
			writeError(w, r, logger, "Failed to compute charts", err)
			return
		}

		utils.WriteJSON(w, http.StatusOK, newChartsResponse(charts))
	}
}
