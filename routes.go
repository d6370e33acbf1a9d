package main

import (
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mvavassori/traffic-insights/handlers"
	"github.com/mvavassori/traffic-insights/middleware"
	"github.com/mvavassori/traffic-insights/services"
	"github.com/mvavassori/traffic-insights/utils"
)

// Dependencies are the collaborators the routes are wired to. Geo may be nil.
type Dependencies struct {
	Store         services.EventStore
	Engine        *services.Engine
	Geo           utils.CityLookup
	Metrics       *middleware.Metrics
	Logger        *zap.Logger
	ActiveWindow  time.Duration
	TopPagesLimit int
}

func SetupRouter(deps Dependencies) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.RequestID, middleware.Logging(deps.Logger), deps.Metrics.Middleware)

	router.HandleFunc("/", handlers.Root()).Methods("GET")
	router.HandleFunc("/health", handlers.Health(deps.Store, deps.Logger)).Methods("GET")
	router.Handle("/metrics", deps.Metrics.Handler()).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	// tracking route
	api.HandleFunc("/track", handlers.CreateEvent(deps.Store, deps.Geo, deps.Metrics.EventsTrackedTotal, deps.Logger)).Methods("POST")

	// analytics routes
	api.HandleFunc("/analytics/dashboard", handlers.GetDashboard(deps.Engine, deps.ActiveWindow, deps.Logger)).Methods("GET")
	api.HandleFunc("/analytics/charts", handlers.GetCharts(deps.Engine, deps.TopPagesLimit, deps.Logger)).Methods("GET")

	// prediction routes
	api.HandleFunc("/prediction/peak-traffic", handlers.GetPeakTraffic(deps.Engine, deps.Logger)).Methods("GET")

	return router
}
