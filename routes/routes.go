package routes

import (
	"github.com/julienschmidt/httprouter"

	"itinera/booking"
	"itinera/groups"
	"itinera/itinerary"
	"itinera/middleware"
	"itinera/places"
	"itinera/ratelim"
)

func AddItineraryRoutes(router *httprouter.Router, h *itinerary.Handlers, rl *ratelim.RateLimiter) {
	router.POST("/api/itineraries", rl.Limit(middleware.Authenticate(h.CreateItinerary)))
	router.GET("/api/itineraries/mine", middleware.Authenticate(h.GetMyItineraries))
	router.GET("/api/itineraries/public", h.GetPublicItineraries)
	router.GET("/api/itineraries/all/:id", middleware.OptionalAuth(h.GetItinerary))
	router.GET("/api/itineraries/all/:id/budget", middleware.OptionalAuth(h.GetBudget))
	router.PUT("/api/itineraries/:id", rl.Limit(middleware.Authenticate(h.UpdateItinerary)))
	router.DELETE("/api/itineraries/:id", rl.Limit(middleware.Authenticate(h.DeleteItinerary)))

	router.POST("/api/itineraries/:id/stops", rl.Limit(middleware.Authenticate(h.AddStop)))
	router.PUT("/api/itineraries/:id/move", rl.Limit(middleware.Authenticate(h.MoveStop)))
	router.DELETE("/api/itineraries/:id/days/:day/stops/:stopId", rl.Limit(middleware.Authenticate(h.RemoveStop)))
	router.PUT("/api/itineraries/:id/stops/:stopId/transit", rl.Limit(middleware.Authenticate(h.UpdateTransit)))

	router.PUT("/api/itineraries/:id/start", rl.Limit(middleware.Authenticate(h.StartItinerary)))
	router.PUT("/api/itineraries/:id/pause", rl.Limit(middleware.Authenticate(h.PauseItinerary)))
	router.PUT("/api/itineraries/:id/resume", rl.Limit(middleware.Authenticate(h.ResumeItinerary)))
	router.PUT("/api/itineraries/:id/cancel", rl.Limit(middleware.Authenticate(h.CancelItinerary)))
	router.PUT("/api/itineraries/:id/stops/:stopId/checkin", rl.Limit(middleware.Authenticate(h.CheckIn)))
	router.PUT("/api/itineraries/:id/stops/:stopId/skip", rl.Limit(middleware.Authenticate(h.SkipStop)))
}

func AddInventoryRoutes(router *httprouter.Router, h *booking.Handlers, rl *ratelim.RateLimiter) {
	router.POST("/api/inventory/units", rl.Limit(middleware.Authenticate(h.CreateUnit)))
	router.GET("/api/inventory/places/:placeid/units", h.ListUnits)
	router.GET("/api/inventory/places/:placeid/availability", h.GetAvailability)
	router.PUT("/api/inventory/units/:id/price", rl.Limit(middleware.Authenticate(h.SetPrice)))
	router.POST("/api/inventory/units/:id/reserve", rl.Limit(middleware.Authenticate(h.Reserve)))
	router.POST("/api/inventory/units/:id/release", rl.Limit(middleware.Authenticate(h.Release)))
	router.GET("/ws/availability/:placeid", h.Watchers.HandleWS)
}

func AddGroupRoutes(router *httprouter.Router, h *groups.Handlers, rl *ratelim.RateLimiter) {
	router.POST("/api/groups/join", rl.Limit(middleware.Authenticate(h.JoinGroup)))
	router.GET("/api/groups/:id", middleware.Authenticate(h.GetGroup))
	router.POST("/api/groups/leave/:id", rl.Limit(middleware.Authenticate(h.LeaveGroup)))
}

func AddPlaceRoutes(router *httprouter.Router, h *places.Handlers) {
	router.GET("/api/places", h.GetPlaces)
	router.GET("/api/places/:placeid", h.GetPlace)
}

func AddNotificationRoutes(router *httprouter.Router, ws httprouter.Handle) {
	router.GET("/ws/notifications", middleware.Authenticate(ws))
}
