package handler

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/traveller-reservation/internal/clock"
	"github.com/iliyamo/traveller-reservation/internal/logger"
	"github.com/iliyamo/traveller-reservation/internal/model"
	"github.com/iliyamo/traveller-reservation/internal/queue"
	"github.com/iliyamo/traveller-reservation/internal/roster"
	"github.com/iliyamo/traveller-reservation/internal/service"
)

// Views of the booking UI.  viewTravellers and deleteTraveller are only
// offered while someone is booked.
const (
	ViewHome            = "home"
	ViewAddTraveller    = "addTraveller"
	ViewViewTravellers  = "viewTravellers"
	ViewDeleteTraveller = "deleteTraveller"
)

// Seat status labels.
const (
	SeatReserved  = "Reserved"
	SeatAvailable = "Available"
)

const fullMessage = "All seats are reserved. No more travellers can be added."

// publishTimeout bounds each background event publish.
const publishTimeout = 3 * time.Second

// TravellerHandler exposes the roster over HTTP.  It only translates
// requests and results; every rule lives in roster.Manager.
type TravellerHandler struct {
	Roster    *roster.Manager
	Publisher service.Publisher
	Clock     clock.Clock

	inflight sync.WaitGroup
}

// NewTravellerHandler builds a handler.  A nil publisher disables events.
func NewTravellerHandler(r *roster.Manager, p service.Publisher, clk clock.Clock) *TravellerHandler {
	if r == nil {
		panic("nil roster passed to NewTravellerHandler")
	}
	if p == nil {
		p = service.NopPublisher{}
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &TravellerHandler{Roster: r, Publisher: p, Clock: clk}
}

type addTravellerReq struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type seatPart struct {
	Number int    `json:"number"`
	Status string `json:"status"`
}

// ListTravellers handles GET /v1/travellers.  Always 200; an empty roster
// yields an empty items array.
func (h *TravellerHandler) ListTravellers(c echo.Context) error {
	items := h.Roster.List()
	return c.JSON(http.StatusOK, echo.Map{
		"items": items,
		"count": len(items),
	})
}

// GetTraveller handles GET /v1/travellers/:id.
func (h *TravellerHandler) GetTraveller(c echo.Context) error {
	item, ok := h.Roster.Get(travellerID(c))
	if !ok {
		return writeRosterError(c, roster.ErrNotFound)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": item})
}

// AddTraveller handles POST /v1/travellers with a JSON body
// {"id","name","phone"}.  Fields are passed to the roster verbatim; it is
// the roster that decides what counts as missing.  Returns 201 with the new
// reservation and the updated roster.
func (h *TravellerHandler) AddTraveller(c echo.Context) error {
	var req addTravellerReq
	if err := c.Bind(&req); err != nil {
		return writeError(c, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
	}
	ctx := c.Request().Context()
	items, err := h.Roster.Add(ctx, req.ID, req.Name, req.Phone)
	if err != nil {
		return writeRosterError(c, err)
	}
	added := items[len(items)-1]
	free := h.Roster.Capacity() - len(items)
	h.publish(ctx, queue.TravellerBooked, added, free)

	return c.JSON(http.StatusCreated, echo.Map{
		"item":       added,
		"items":      items,
		"free_seats": free,
	})
}

// DeleteTraveller handles DELETE /v1/travellers/:id.  next_view tells the
// client where to go: back home once the roster is empty.
func (h *TravellerHandler) DeleteTraveller(c echo.Context) error {
	id := travellerID(c)
	removed, _ := h.Roster.Get(id)
	ctx := c.Request().Context()
	items, becameEmpty, err := h.Roster.Remove(ctx, id)
	if err != nil {
		return writeRosterError(c, err)
	}
	free := h.Roster.Capacity() - len(items)
	h.publish(ctx, queue.TravellerRemoved, removed, free)

	next := ViewDeleteTraveller
	if becameEmpty {
		next = ViewHome
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":        items,
		"became_empty": becameEmpty,
		"next_view":    next,
		"free_seats":   free,
	})
}

// travellerID returns the :id path segment decoded.  echo routes on
// URL.RawPath when the request escapes a reserved character (an id holding
// "/" arrives as a%2Fb), and then leaves the parameter escaped.
func travellerID(c echo.Context) string {
	id := c.Param("id")
	if c.Request().URL.RawPath == "" {
		return id
	}
	if decoded, err := url.PathUnescape(id); err == nil {
		return decoded
	}
	return id
}

// Seats handles GET /v1/seats.  Seats are numbered from 1 and reserved in
// booking order.
func (h *TravellerHandler) Seats(c echo.Context) error {
	occupancy := h.Roster.SeatOccupancy()
	seats := make([]seatPart, len(occupancy))
	free := 0
	for i, taken := range occupancy {
		status := SeatAvailable
		if taken {
			status = SeatReserved
		} else {
			free++
		}
		seats[i] = seatPart{Number: i + 1, Status: status}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"capacity":   len(occupancy),
		"free_seats": free,
		"seats":      seats,
	})
}

// Summary handles GET /v1/summary: the free-seat banner and navigation
// state shown on every page.
func (h *TravellerHandler) Summary(c echo.Context) error {
	n := h.Roster.Len()
	free := h.Roster.Capacity() - n
	resp := echo.Map{
		"free_seats": free,
		"booked":     n,
		"full":       free <= 0,
		"views":      AvailableViews(n),
	}
	if free <= 0 {
		resp["message"] = fullMessage
	}
	return c.JSON(http.StatusOK, resp)
}

// AvailableViews lists the navigation views for a roster of size n.
func AvailableViews(n int) []string {
	views := []string{ViewHome, ViewAddTraveller}
	if n > 0 {
		views = append(views, ViewViewTravellers, ViewDeleteTraveller)
	}
	return views
}

// Wait blocks until every event handed to the publisher has been sent or
// has failed.  The server calls it after shutting down the listener.
func (h *TravellerHandler) Wait() {
	h.inflight.Wait()
}

// publish sends an event in the background; the response never waits on
// the broker.  Failures are logged here and nowhere else.
func (h *TravellerHandler) publish(ctx context.Context, typ string, r model.Reservation, free int) {
	ev := queue.TravellerEvent{
		Type:        typ,
		TravellerID: r.ID,
		Name:        r.Name,
		Phone:       r.Phone,
		BookingTime: r.BookingTime,
		FreeSeats:   free,
		OccurredAt:  h.Clock.Now().UTC().Format(time.RFC3339),
	}
	ctx = context.WithoutCancel(ctx)

	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()
		if err := h.Publisher.Publish(ctx, ev); err != nil {
			logger.Logger.Warn().Err(err).Str("event", typ).Str("traveller_id", r.ID).Msg("event publish failed")
		}
	}()
}
