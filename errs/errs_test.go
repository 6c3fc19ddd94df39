package errs

import (
	"errors"
	"net/http"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindOfWalksWrappedChain(t *testing.T) {
	err := pkgerrors.Wrap(NotFound("itinerary %s not found", "x"), "load")
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestErrFullMatchesWithIs(t *testing.T) {
	wrapped := pkgerrors.Wrapf(ErrFull, "unit %s", "u1")
	assert.True(t, errors.Is(wrapped, ErrFull))
	assert.False(t, errors.Is(Conflict("other"), ErrFull))
	assert.Equal(t, http.StatusConflict, HTTPStatus(wrapped))
}

func TestStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Validation("bad")))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(Forbidden("no")))
	assert.Contains(t, Internal(errors.New("x"), "save failed").Error(), "save failed: x")
}

func TestFullCarriesMessage(t *testing.T) {
	err := Full("%s is fully booked on %s", "Deluxe", "2026-05-01")
	assert.True(t, errors.Is(err, ErrFull))
	assert.Equal(t, "Deluxe is fully booked on 2026-05-01", Message(pkgerrors.Wrap(err, "reserve")))
	assert.Equal(t, "boom", Message(errors.New("boom")))
}
