// Package booking exposes the inventory ledger over HTTP: units, calendars,
// price overrides and direct reservations.
package booking

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"itinera/errs"
	"itinera/ledger"
	"itinera/models"
	"itinera/utils"
)

type Handlers struct {
	Ledger   *ledger.Ledger
	Watchers *Watchers
}

// POST /api/inventory/units
func (h *Handlers) CreateUnit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var unit models.InventoryUnit
	if err := utils.DecodeJSON(r, &unit); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	created, err := h.Ledger.CreateUnit(ctx, unit)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	h.Watchers.broadcastUpdate(created.PlaceID, created.UnitID)
	utils.RespondWithJSON(w, http.StatusCreated, created)
}

// GET /api/inventory/places/:placeid/units
func (h *Handlers) ListUnits(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	units, err := h.Ledger.UnitsByPlace(ctx, ps.ByName("placeid"))
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, units)
}

// GET /api/inventory/places/:placeid/availability?from=&to=
func (h *Handlers) GetAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	from := r.URL.Query().Get("from")
	if from == "" {
		from = utils.Today()
	}
	to := r.URL.Query().Get("to")
	if to == "" {
		to = from
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	avail, err := h.Ledger.QueryAvailability(ctx, ps.ByName("placeid"), from, to)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, avail)
}

type priceRequest struct {
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot"`
	Price    int64  `json:"price"`
}

// PUT /api/inventory/units/:id/price
func (h *Handlers) SetPrice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req priceRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	unitID := ps.ByName("id")
	if err := h.Ledger.SetPriceOverride(ctx, unitID, req.Date, req.TimeSlot, req.Price); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	h.notify(ctx, unitID)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Price updated"})
}

type reserveRequest struct {
	CheckIn  string `json:"check_in"`
	Nights   int    `json:"nights"`
	TimeSlot string `json:"time_slot"`
}

// POST /api/inventory/units/:id/reserve
func (h *Handlers) Reserve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req reserveRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if req.CheckIn == "" {
		utils.RespondWithAppError(w, errs.Validation("check_in is required"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Ledger.ReserveStay(ctx, ps.ByName("id"), req.CheckIn, req.Nights, req.TimeSlot)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	h.notify(ctx, res.UnitID)
	utils.RespondWithJSON(w, http.StatusCreated, res)
}

type releaseRequest struct {
	Dates    []string `json:"dates"`
	TimeSlot string   `json:"time_slot"`
	Quantity int      `json:"quantity"`
}

// POST /api/inventory/units/:id/release
func (h *Handlers) Release(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req releaseRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if len(req.Dates) == 0 {
		utils.RespondWithAppError(w, errs.Validation("dates are required"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	unitID := ps.ByName("id")
	res := &models.Reservation{UnitID: unitID, Dates: req.Dates, TimeSlot: req.TimeSlot, Quantity: req.Quantity}
	if err := h.Ledger.ReleaseReservation(ctx, res); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	h.notify(ctx, unitID)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Released"})
}

func (h *Handlers) notify(ctx context.Context, unitID string) {
	(&WatchedLedger{Ledger: h.Ledger, Watchers: h.Watchers}).changed(ctx, unitID)
}
