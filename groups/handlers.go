package groups

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"itinera/utils"
)

type Handlers struct {
	Service *Service
}

type joinRequest struct {
	InviteCode string `json:"invite_code"`
}

// POST /api/groups/join
func (h *Handlers) JoinGroup(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req joinRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	g, err := h.Service.Join(ctx, utils.GetUserIDFromRequest(r), req.InviteCode)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, g)
}

// GET /api/groups/:id
func (h *Handlers) GetGroup(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	g, err := h.Service.Get(ctx, utils.GetUserIDFromRequest(r), ps.ByName("id"))
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, g)
}

// POST /api/groups/leave/:id
func (h *Handlers) LeaveGroup(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	g, err := h.Service.Leave(ctx, utils.GetUserIDFromRequest(r), ps.ByName("id"))
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, g)
}
