package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mvavassori/traffic-insights/services"
	"github.com/mvavassori/traffic-insights/utils"
)

func GetPeakTraffic(engine *services.Engine, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prediction, err := engine.PredictPeakHour(r.Context())
		if err != nil {
			writeError(w, r, logger, "Failed to predict peak traffic", err)
			return
		}

		utils.WriteJSON(w, http.StatusOK, newPeakTrafficResponse(prediction))
	}
}
