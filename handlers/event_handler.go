package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/mvavassori/traffic-insights/middleware"
	"github.com/mvavassori/traffic-insights/models"
	"github.com/mvavassori/traffic-insights/services"
	"github.com/mvavassori/traffic-insights/utils"
)

const maxTrackBodyBytes = 1 << 20

// CreateEvent stores one tracker event. Device, browser, os and country are
// resolved here, once, and stored with the event. geo and tracked may be nil.
func CreateEvent(store services.EventStore, geo utils.CityLookup, tracked *prometheus.CounterVec, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var receiver models.EventReceiver
		err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTrackBodyBytes)).Decode(&receiver)
		if err != nil {
			logger.Warn("Invalid track request",
				zap.Error(err),
				zap.String("request_id", middleware.GetRequestID(r.Context())))
			utils.WriteErrorResponse(w, http.StatusBadRequest, err)
			return
		}

		if err := receiver.Validate(); err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, err)
			return
		}

		// fall back to the transport header when the body has no user agent
		userAgent := r.Header.Get("User-Agent")
		if receiver.UserAgent != nil && *receiver.UserAgent != "" {
			userAgent = *receiver.UserAgent
		}
		device := utils.ParseUserAgent(userAgent)

		insert := models.EventInsert{
			SessionID:  receiver.SessionID,
			URL:        receiver.URL,
			EventType:  receiver.EventType,
			UserAgent:  models.StringPtr(userAgent),
			DeviceType: device.DeviceType,
			Browser:    device.Browser,
			OS:         device.OS,
			Country:    utils.LookupCountry(geo, utils.GetIPAddress(r)),
		}
		if receiver.Referrer != nil {
			insert.TrafficSource = models.StringPtr(*receiver.Referrer)
		}
		if receiver.Timestamp != nil {
			insert.Timestamp = receiver.Timestamp.Time
		}

		event, err := store.Insert(r.Context(), insert)
		if err != nil {
			writeError(w, r, logger, "Failed to store event", err)
			return
		}

		if tracked != nil {
			tracked.WithLabelValues(event.EventType).Inc()
		}

		utils.WriteJSON(w, http.StatusOK, event)
	}
}

// writeError maps validation failures to 400 and everything else to 500.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, msg string, err error) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		utils.WriteErrorResponse(w, http.StatusBadRequest, validationErr)
		return
	}

	logger.Error(msg,
		zap.Error(err),
		zap.Bool("store_unavailable", errors.Is(err, services.ErrStoreUnavailable)),
		zap.String("request_id", middleware.GetRequestID(r.Context())))
	utils.WriteErrorResponse(w, http.StatusInternalServerError, errors.New("Internal Server Error"))
}
