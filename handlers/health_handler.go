package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mvavassori/traffic-insights/services"
	"github.com/mvavassori/traffic-insights/utils"
)

func Root() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Analytics Backend Running"})
	}
}

func Health(store services.EventStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			logger.Error("Health check failed", zap.Error(err))
			utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
