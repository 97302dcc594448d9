package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/tablesideapp/tableside/internal/models"
	"github.com/tablesideapp/tableside/internal/services"
)

// reservationTimeLayouts accepts RFC 3339 from API clients and the value of
// an HTML datetime-local input.
var reservationTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04"}

func (h *Handlers) CreateReservation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := h.requireSession(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	in, err := readFields(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	partySize, _, err := in.Int("partySize")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	at, err := parseReservationTime(in.String("at"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	reservation, err := h.reservations.Create(ctx, callerFor(sess), models.Reservation{
		Name:      in.String("name"),
		Phone:     in.String("phone"),
		PartySize: partySize,
		At:        at,
		Note:      in.String("note"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if isHTMX(r) {
		h.renderSuccess(w, r, http.StatusCreated, "Table reserved")
		return
	}
	h.writeJSON(w, ctx, http.StatusCreated, reservation)
}

func parseReservationTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range reservationTimeLayouts {
		if at, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return at, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: at must be a date and time", services.ErrInvalidInput)
}
