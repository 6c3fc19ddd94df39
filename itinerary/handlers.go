package itinerary

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"itinera/errs"
	"itinera/journey"
	"itinera/utils"
)

type Handlers struct {
	Service *journey.Service
}

func dayParam(ps httprouter.Params) (int, error) {
	n, err := strconv.Atoi(ps.ByName("day"))
	if err != nil || n < 1 {
		return 0, errs.Validation("invalid day number %q", ps.ByName("day"))
	}
	return n, nil
}

func respond(w http.ResponseWriter, status int, res any, err error) {
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, status, res)
}

// POST /api/itineraries
func (h *Handlers) CreateItinerary(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req journey.CreateRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Service.CreateItinerary(ctx, utils.GetUserIDFromRequest(r), req)
	respond(w, http.StatusCreated, res, err)
}

// GET /api/itineraries/mine
func (h *Handlers) GetMyItineraries(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.Service.ListMine(ctx, utils.GetUserIDFromRequest(r))
	respond(w, http.StatusOK, list, err)
}

// GET /api/itineraries/public?search=&page=&limit=
func (h *Handlers) GetPublicItineraries(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := utils.ParseQueryOptions(r)
	list, err := h.Service.ListPublic(ctx, q.Search, q.Page, q.Limit)
	respond(w, http.StatusOK, list, err)
}

// GET /api/itineraries/all/:id
func (h *Handlers) GetItinerary(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Service.GetItinerary(ctx, utils.GetUserIDFromRequest(r), ps.ByName("id"))
	respond(w, http.StatusOK, res, err)
}

// PUT /api/itineraries/:id
func (h *Handlers) UpdateItinerary(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req journey.UpdateRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Service.UpdateItinerary(ctx, utils.GetUserIDFromRequest(r), ps.ByName("id"), req)
	respond(w, http.StatusOK, res, err)
}

// DELETE /api/itineraries/:id
func (h *Handlers) DeleteItinerary(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Service.DeleteItinerary(ctx, utils.GetUserIDFromRequest(r), ps.ByName("id")); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Itinerary deleted successfully"})
}

// POST /api/itineraries/:id/stops
func (h *Handlers) AddStop(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req journey.AddStopRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Service.AddStop(ctx, utils.GetUserIDFromRequest(r), ps.ByName("id"), req)
	respond(w, http.StatusCreated, res, err)
}

// PUT /api/itineraries/:id/move
func (h *Handlers) MoveStop(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req journey.MoveStopRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Service.MoveStop(ctx, utils.GetUserIDFromRequest(r), ps.ByName("id"), req)
	respond(w, http.StatusOK, res, err)
}

// DELETE /api/itineraries/:id/days/:day/stops/:stopId
func (h *Handlers) RemoveStop(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	day, err := dayParam(ps)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Service.RemoveStop(ctx, utils.GetUserIDFromRequest(r), ps.ByName("id"), day, ps.ByName("stopId"))
	respond(w, http.StatusOK, res, err)
}

// PUT /api/itineraries/:id/stops/:stopId/transit
func (h *Handlers) UpdateTransit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req journey.UpdateTransitRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Service.UpdateTransit(ctx, utils.GetUserIDFromRequest(r), ps.ByName("id"), ps.ByName("stopId"), req)
	respond(w, http.StatusOK, res, err)
}

// PUT /api/itineraries/:id/start
func (h *Handlers) StartItinerary(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req journey.StartRequest
	if r.ContentLength > 0 {
		if err := utils.DecodeJSON(r, &req); err != nil {
			utils.RespondWithAppError(w, err)
			return
		}
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Service.Start(ctx, utils.GetUserIDFromRequest(r), ps.ByName("id"), req)
	respond(w, http.StatusOK, res, err)
}

// PUT /api/itineraries/:id/pause
func (h *Handlers) PauseItinerary(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Service.Pause(ctx, utils.GetUserIDFromRequest(r), ps.ByName("id"))
	respond(w, http.StatusOK, res, err)
}

// PUT /api/itineraries/:id/resume
func (h *Handlers) ResumeItinerary(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req journey.ResumeRequest
	if r.ContentLength > 0 {
		if err := utils.DecodeJSON(r, &req); err != nil {
			utils.RespondWithAppError(w, err)
			return
		}
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Service.Resume(ctx, utils.GetUserIDFromRequest(r), ps.ByName("id"), req)
	respond(w, http.StatusOK, res, err)
}

// PUT /api/itineraries/:id/cancel
func (h *Handlers) CancelItinerary(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Service.Cancel(ctx, utils.GetUserIDFromRequest(r), ps.ByName("id"))
	respond(w, http.StatusOK, res, err)
}

// PUT /api/itineraries/:id/stops/:stopId/checkin
func (h *Handlers) CheckIn(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req journey.CheckInRequest
	if r.ContentLength > 0 {
		if err := utils.DecodeJSON(r, &req); err != nil {
			utils.RespondWithAppError(w, err)
			return
		}
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Service.CheckIn(ctx, utils.GetUserIDFromRequest(r), ps.ByName("id"), ps.ByName("stopId"), req)
	respond(w, http.StatusOK, res, err)
}

// PUT /api/itineraries/:id/stops/:stopId/skip
func (h *Handlers) SkipStop(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Service.Skip(ctx, utils.GetUserIDFromRequest(r), ps.ByName("id"), ps.ByName("stopId"))
	respond(w, http.StatusOK, res, err)
}

// GET /api/itineraries/all/:id/budget?members=&includeAccommodation=
func (h *Handlers) GetBudget(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	members := utils.QueryInt(r, "members", 0)
	include := utils.QueryBool(r, "includeAccommodation", true)
	report, err := h.Service.GetBudget(ctx, utils.GetUserIDFromRequest(r), ps.ByName("id"), members, include)
	respond(w, http.StatusOK, report, err)
}
