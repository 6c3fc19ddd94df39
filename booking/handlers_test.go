package booking

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itinera/ledger"
	"itinera/models"
)

func newRouter() *httprouter.Router {
	h := &Handlers{Ledger: ledger.New(ledger.NewMemoryStore(), nil), Watchers: NewWatchers()}
	router := httprouter.New()
	router.POST("/api/inventory/units", h.CreateUnit)
	router.GET("/api/inventory/places/:placeid/units", h.ListUnits)
	router.GET("/api/inventory/places/:placeid/availability", h.GetAvailability)
	router.PUT("/api/inventory/units/:id/price", h.SetPrice)
	router.POST("/api/inventory/units/:id/reserve", h.Reserve)
	router.POST("/api/inventory/units/:id/release", h.Release)
	return router
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestInventoryFlow(t *testing.T) {
	router := newRouter()

	rec := do(router, http.MethodPost, "/api/inventory/units",
		`{"place_id":"hotel","unit_type":"ROOM","name":"Twin","base_price":400000,"capacity":2,"total_inventory":1}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var unit models.InventoryUnit
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &unit))
	require.NotEmpty(t, unit.UnitID)

	rec = do(router, http.MethodGet, "/api/inventory/places/hotel/units", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), unit.UnitID)

	rec = do(router, http.MethodPut, "/api/inventory/units/"+unit.UnitID+"/price", `{"date":"2026-06-02","price":600000}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodPost, "/api/inventory/units/"+unit.UnitID+"/reserve", `{"check_in":"2026-06-01","nights":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var res models.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, []string{"2026-06-01", "2026-06-02"}, res.Dates)

	rec = do(router, http.MethodPost, "/api/inventory/units/"+unit.UnitID+"/reserve", `{"check_in":"2026-06-02","nights":1}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "fully booked")

	rec = do(router, http.MethodGet, "/api/inventory/places/hotel/availability?from=2026-06-01&to=2026-06-03", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var avail []ledger.UnitAvailability
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &avail))
	require.Len(t, avail, 1)
	require.Len(t, avail[0].Days, 3)
	assert.True(t, avail[0].Days[1].IsFull)
	assert.Equal(t, int64(600000), avail[0].Days[1].Price)
	assert.False(t, avail[0].Days[2].IsFull)

	rec = do(router, http.MethodPost, "/api/inventory/units/"+unit.UnitID+"/release", `{"dates":["2026-06-02"]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(router, http.MethodPost, "/api/inventory/units/"+unit.UnitID+"/reserve", `{"check_in":"2026-06-02"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestInventoryValidation(t *testing.T) {
	router := newRouter()

	rec := do(router, http.MethodPost, "/api/inventory/units", `{"place_id":"hotel","total_inventory":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodPost, "/api/inventory/units", `{"unknown":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodPost, "/api/inventory/units/missing/reserve", `{"check_in":"2026-06-01"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(router, http.MethodPost, "/api/inventory/units/missing/reserve", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodGet, "/api/inventory/places/hotel/availability?from=2026-06-03&to=2026-06-01", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
