package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itinera/errs"
	"itinera/models"
)

func TestMemoryCatalog(t *testing.T) {
	c := NewMemoryCatalog(models.Place{PlaceID: "a", Name: "Ba Na Hills"}, models.Place{PlaceID: "b"})

	p, err := c.GetPlace(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "Ba Na Hills", p.Name)

	_, err = c.GetPlace(context.Background(), "zzz")
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))

	found, err := c.GetPlaces(context.Background(), []string{"a", "zzz", "b"})
	require.NoError(t, err)
	assert.Len(t, found, 2)
	assert.NotContains(t, found, "zzz")
}

func TestParseSeed(t *testing.T) {
	raw := []byte(`
places:
  - id: dragon-bridge
    name: Dragon Bridge
    category: SIGHTSEEING
    latitude: 16.0612
    longitude: 108.2277
  - id: no-coords
    name: Somewhere
    category: CAFE
`)
	got, err := parseSeed(raw)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].Location)
	assert.InDelta(t, 16.0612, got[0].Location.Latitude, 1e-9)
	assert.Nil(t, got[1].Location)

	_, err = parseSeed([]byte("places:\n  - name: nameless\n"))
	assert.Error(t, err)
}

func TestGetPlaceHandler(t *testing.T) {
	h := &Handlers{Catalog: NewMemoryCatalog(models.Place{PlaceID: "a", Name: "Marble Mountains"})}
	router := httprouter.New()
	router.GET("/api/places/:placeid", h.GetPlace)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/places/a", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Marble Mountains")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/places/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
