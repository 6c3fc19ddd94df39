package routes

import (
	"github.com/julienschmidt/httprouter"

	"itinera/booking"
	"itinera/groups"
	"itinera/itinerary"
	"itinera/places"
	"itinera/ratelim"
)

// Handlers bundles every handler set the router serves.
type Handlers struct {
	Itineraries   *itinerary.Handlers
	Inventory     *booking.Handlers
	Groups        *groups.Handlers
	Places        *places.Handlers
	Notifications httprouter.Handle
}

func RoutesWrapper(router *httprouter.Router, h Handlers, rateLimiter *ratelim.RateLimiter) {
	AddItineraryRoutes(router, h.Itineraries, rateLimiter)
	AddInventoryRoutes(router, h.Inventory, rateLimiter)
	AddGroupRoutes(router, h.Groups, rateLimiter)
	AddPlaceRoutes(router, h.Places)
	AddNotificationRoutes(router, h.Notifications)
}
