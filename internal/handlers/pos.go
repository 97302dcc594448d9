package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/tablesideapp/tableside/internal/models"
	"github.com/tablesideapp/tableside/internal/realtime"
	"github.com/tablesideapp/tableside/internal/services"
	"github.com/tablesideapp/tableside/ui/views"
)

const eventsHeartbeat = 25 * time.Second

func (h *Handlers) renderDraft(w http.ResponseWriter, r *http.Request, view *services.DraftView) {
	h.respond(w, r, http.StatusOK, view.Draft, func() templ.Component {
		return views.DraftPanel(view.Draft, view.Totals, view.Subtotal)
	})
}

func (h *Handlers) Draft(w http.ResponseWriter, r *http.Request) {
	sess, err := h.requireSession(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if sess.DraftOrderID == uuid.Nil {
		h.renderDraft(w, r, &services.DraftView{Draft: &models.DraftOrder{EmployeeID: sess.Subject()}})
		return
	}

	view, err := h.drafts.View(r.Context(), sess.DraftOrderID, sess.Subject())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.renderDraft(w, r, view)
}

func (h *Handlers) RemoveDraftLine(w http.ResponseWriter, r *http.Request) {
	sess, err := h.requireSession(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if sess.DraftOrderID == uuid.Nil {
		h.writeError(w, r, services.ErrDraftNotFound)
		return
	}

	view, err := h.drafts.RemoveLine(r.Context(), sess.DraftOrderID, sess.Subject(), mux.Vars(r)["variantId"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.renderDraft(w, r, view)
}

// SubmitDraft sends the draft to the backend as an order and starts a fresh
// draft for the next ticket.
func (h *Handlers) SubmitDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := h.requireSession(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if sess.DraftOrderID == uuid.Nil {
		h.writeError(w, r, services.ErrDraftEmpty)
		return
	}
	in, err := readFields(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	order, err := h.drafts.Submit(ctx, callerFor(sess), sess.DraftOrderID, sess.Subject(), services.SubmitDraftInput{
		Type:    models.OrderType(in.String("type")),
		TableID: in.String("tableId"),
		Note:    in.String("note"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	sess.DraftOrderID = uuid.Nil
	if err := h.saveSession(ctx, r, sess); err != nil {
		h.writeError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("HX-Trigger", posSurface.trigger)
		h.renderSuccess(w, r, http.StatusCreated, "Order sent to the kitchen")
		return
	}
	h.writeJSON(w, ctx, http.StatusCreated, order)
}

func (h *Handlers) Orders(w http.ResponseWriter, r *http.Request) {
	sess, err := h.requireSession(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	orders, err := h.floor.Orders(r.Context(), callerFor(sess), r.URL.Query().Get("status"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	h.respond(w, r, http.StatusOK, orders, func() templ.Component { return views.OrderBoard(orders) })
}

func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
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
	order, err := h.floor.UpdateOrderStatus(r.Context(), callerFor(sess), mux.Vars(r)["id"], models.StatusUpdate{Status: in.String("status")})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, order, func() templ.Component { return views.OrderBoard([]models.Order{*order}) })
}

func (h *Handlers) Tables(w http.ResponseWriter, r *http.Request) {
	sess, err := h.requireSession(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	tables, err := h.floor.Tables(r.Context(), callerFor(sess))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if tables == nil {
		tables = []models.Table{}
	}
	h.respond(w, r, http.StatusOK, tables, func() templ.Component { return views.TablePlan(tables) })
}

func (h *Handlers) UpdateTableStatus(w http.ResponseWriter, r *http.Request) {
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
	table, err := h.floor.UpdateTableStatus(r.Context(), callerFor(sess), mux.Vars(r)["id"], models.StatusUpdate{Status: in.String("status")})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, table, func() templ.Component { return views.TablePlan([]models.Table{*table}) })
}

// Events streams realtime events to a POS screen as server-sent events.
func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	rc := http.NewResponseController(w)
	// The stream outlives the server's write timeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		logger.Warn("failed to clear write deadline for event stream", "error", err)
	}

	events, cancel := h.broadcaster.Subscribe()
	defer cancel()

	headers := w.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if _, err := io.WriteString(w, ": connected\n\n"); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		logger.Warn("event stream does not support flushing", "error", err)
		return
	}

	heartbeat := time.NewTicker(eventsHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return
			}
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(w, event); err != nil {
				logger.Debug("event stream closed", "error", err)
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeEvent(w io.Writer, event realtime.Event) error {
	var data bytes.Buffer
	if err := json.Compact(&data, event.Payload()); err != nil {
		return fmt.Errorf("compact event payload: %w", err)
	}
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Subject, data.Bytes())
	return err
}
