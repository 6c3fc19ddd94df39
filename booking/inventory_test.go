package booking

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itinera/ledger"
	"itinera/models"
)

func TestWatchedLedgerPingsWatchers(t *testing.T) {
	ctx := context.Background()
	led := ledger.New(ledger.NewMemoryStore(), nil)
	unit, err := led.CreateUnit(ctx, models.InventoryUnit{
		PlaceID: "hotel", UnitType: models.UnitRoom, Name: "Garden", BasePrice: 300000, Capacity: 2, TotalInventory: 1,
	})
	require.NoError(t, err)

	watchers := NewWatchers()
	router := httprouter.New()
	router.GET("/ws/availability/:placeid", watchers.HandleWS)
	srv := httptest.NewServer(router)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/availability/hotel", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return watchers.Count("hotel") == 1 }, time.Second, 10*time.Millisecond)

	wl := &WatchedLedger{Ledger: led, Watchers: watchers}
	next := func() WSMessage {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var msg WSMessage
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	res, err := wl.ReserveStay(ctx, unit.UnitID, "2026-05-01", 1, "")
	require.NoError(t, err)
	assert.Equal(t, WSMessage{Type: "update", PlaceID: "hotel", UnitID: unit.UnitID}, next())

	require.NoError(t, wl.ReleaseReservation(ctx, res))
	assert.Equal(t, WSMessage{Type: "update", PlaceID: "hotel", UnitID: unit.UnitID}, next())
}
