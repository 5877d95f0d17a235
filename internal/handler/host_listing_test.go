package handler

import (
    "database/sql"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/labstack/echo/v4"

    "github.com/novastay/booking-settlement/internal/repository"
)

func newHostListingHandler() *HostListingHandler {
    db := new(sql.DB)
    return NewHostListingHandler(
        repository.NewListingRepo(db),
        repository.NewBlockedRangeRepo(db),
        repository.NewReservationRepo(db),
    )
}

func coOwnerContext(e *echo.Echo, body, listingID string) (echo.Context, *httptest.ResponseRecorder) {
    req := httptest.NewRequest(http.MethodPost, "/v1/host/listings/"+listingID+"/owners", strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.SetPath("/v1/host/listings/:id/owners")
    c.SetParamNames("id")
    c.SetParamValues(listingID)
    c.Set("user_id", uint64(3))
    return c, rec
}

func TestAddCoOwnerValidation(t *testing.T) {
    e := echo.New()
    h := newHostListingHandler()

    cases := []struct {
        name      string
        listingID string
        body      string
        wantCode  int
    }{
        {"invalid listing id", "nope", `{"host_id":5}`, http.StatusBadRequest},
        {"missing host_id", "1", `{}`, http.StatusBadRequest},
        {"zero host_id", "1", `{"host_id":0}`, http.StatusBadRequest},
        {"malformed body", "1", `{"host_id":`, http.StatusBadRequest},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            c, rec := coOwnerContext(e, tc.body, tc.listingID)
            if err := h.AddCoOwner(c); err != nil {
                t.Fatalf("handler returned error: %v", err)
            }
            if rec.Code != tc.wantCode {
                t.Errorf("status = %d, want %d (body %s)", rec.Code, tc.wantCode, rec.Body.String())
            }
        })
    }
}

func TestAddBlockRejectsInvertedRange(t *testing.T) {
    e := echo.New()
    h := newHostListingHandler()
    body := `{"start_date":"2026-10-10","end_date":"2026-10-05"}`
    req := httptest.NewRequest(http.MethodPost, "/v1/host/listings/1/blocks", strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.SetPath("/v1/host/listings/:id/blocks")
    c.SetParamNames("id")
    c.SetParamValues("1")
    c.Set("user_id", uint64(3))
    if err := h.AddBlock(c); err != nil {
        t.Fatalf("handler returned error: %v", err)
    }
    if rec.Code != http.StatusBadRequest {
        t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
    }
}
