package handler

import (
    "database/sql"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/labstack/echo/v4"

    "github.com/novastay/booking-settlement/internal/lifecycle"
    "github.com/novastay/booking-settlement/internal/repository"
)

// newGuestHandler builds a GuestHandler whose repositories are never
// reached: the cases below all fail request validation first.
func newGuestHandler() *GuestHandler {
    db := new(sql.DB)
    reservations := repository.NewReservationRepo(db)
    transitions := repository.NewTransitionRepo(db)
    ledger := repository.NewLedgerRepo(db)
    return NewGuestHandler(
        repository.NewListingRepo(db),
        reservations,
        repository.NewBlockedRangeRepo(db),
        repository.NewCommissionRuleRepo(db),
        transitions,
        lifecycle.New(db, reservations, transitions, ledger),
    )
}

func bookingContext(e *echo.Echo, body string, listingID string) (echo.Context, *httptest.ResponseRecorder) {
    req := httptest.NewRequest(http.MethodPost, "/v1/listings/"+listingID+"/bookings", strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.SetPath("/v1/listings/:id/bookings")
    c.SetParamNames("id")
    c.SetParamValues(listingID)
    c.Set("user_id", uint64(7))
    return c, rec
}

func TestRequestBookingValidation(t *testing.T) {
    e := echo.New()
    h := newGuestHandler()

    cases := []struct {
        name      string
        listingID string
        body      string
        wantCode  int
    }{
        {
            name:      "invalid listing id",
            listingID: "zero",
            body:      `{"arrival_date":"2026-09-10","departure_date":"2026-09-12","headcount":2}`,
            wantCode:  http.StatusBadRequest,
        },
        {
            name:      "missing fields",
            listingID: "1",
            body:      `{"arrival_date":"2026-09-10"}`,
            wantCode:  http.StatusBadRequest,
        },
        {
            name:      "zero headcount",
            listingID: "1",
            body:      `{"arrival_date":"2026-09-10","departure_date":"2026-09-12","headcount":0}`,
            wantCode:  http.StatusBadRequest,
        },
        {
            name:      "malformed date",
            listingID: "1",
            body:      `{"arrival_date":"10/09/2026","departure_date":"2026-09-12","headcount":2}`,
            wantCode:  http.StatusBadRequest,
        },
        // An inverted, empty or past range is a caller error, the
        // same family as a malformed date: 400, never 422.
        {
            name:      "arrival equals departure",
            listingID: "1",
            body:      `{"arrival_date":"2026-09-12","departure_date":"2026-09-12","headcount":2}`,
            wantCode:  http.StatusBadRequest,
        },
        {
            name:      "inverted range",
            listingID: "1",
            body:      `{"arrival_date":"2026-09-14","departure_date":"2026-09-12","headcount":2}`,
            wantCode:  http.StatusBadRequest,
        },
        {
            name:      "arrival in the past",
            listingID: "1",
            body:      `{"arrival_date":"2020-01-01","departure_date":"2020-01-05","headcount":2}`,
            wantCode:  http.StatusBadRequest,
        },
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            c, rec := bookingContext(e, tc.body, tc.listingID)
            if err := h.RequestBooking(c); err != nil {
                t.Fatalf("handler returned error: %v", err)
            }
            if rec.Code != tc.wantCode {
                t.Errorf("status = %d, want %d (body %s)", rec.Code, tc.wantCode, rec.Body.String())
            }
        })
    }
}

func TestRequestBookingUnauthorized(t *testing.T) {
    e := echo.New()
    h := newGuestHandler()
    req := httptest.NewRequest(http.MethodPost, "/v1/listings/1/bookings", strings.NewReader(`{}`))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.SetParamNames("id")
    c.SetParamValues("1")
    // no user_id in context
    if err := h.RequestBooking(c); err != nil {
        t.Fatalf("handler returned error: %v", err)
    }
    if rec.Code != http.StatusUnauthorized {
        t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
    }
}

func TestCancelBookingRejectsBadID(t *testing.T) {
    e := echo.New()
    h := newGuestHandler()
    req := httptest.NewRequest(http.MethodDelete, "/v1/bookings/abc", nil)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.SetPath("/v1/bookings/:id")
    c.SetParamNames("id")
    c.SetParamValues("abc")
    c.Set("user_id", uint64(7))
    if err := h.CancelBooking(c); err != nil {
        t.Fatalf("handler returned error: %v", err)
    }
    if rec.Code != http.StatusBadRequest {
        t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
    }
}
