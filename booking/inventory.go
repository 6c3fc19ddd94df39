package booking

import (
	"context"

	"itinera/ledger"
	"itinera/models"
)

// WatchedLedger is the ledger as the itinerary service sees it: every hold
// taken or returned through it also pings the place's availability watchers.
type WatchedLedger struct {
	*ledger.Ledger
	Watchers *Watchers
}

func (wl *WatchedLedger) ReserveStay(ctx context.Context, unitID, checkIn string, nights int, slot string) (*models.Reservation, error) {
	res, err := wl.Ledger.ReserveStay(ctx, unitID, checkIn, nights, slot)
	if err != nil {
		return nil, err
	}
	wl.changed(ctx, unitID)
	return res, nil
}

// ReleaseReservation notifies even on a partial failure since some dates may
// have been returned.
func (wl *WatchedLedger) ReleaseReservation(ctx context.Context, res *models.Reservation) error {
	err := wl.Ledger.ReleaseReservation(ctx, res)
	if res != nil {
		wl.changed(ctx, res.UnitID)
	}
	return err
}

func (wl *WatchedLedger) changed(ctx context.Context, unitID string) {
	if wl.Watchers == nil {
		return
	}
	if unit, err := wl.Ledger.GetUnit(ctx, unitID); err == nil {
		wl.Watchers.broadcastUpdate(unit.PlaceID, unitID)
	}
}
