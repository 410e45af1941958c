package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/astrein-exzellent/lagerhub-backend/internal/reservations"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/db/models"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/enums"
	pkgerrors "github.com/astrein-exzellent/lagerhub-backend/pkg/errors"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/types"
)

type stubReservationService struct {
	reservation *models.Reservation
	history     *models.ReservationHistory
	historyList *reservations.HistoryListResult
	err         error
	lastReserve reservations.ReserveInput
}

func (s *stubReservationService) Reserve(_ context.Context, in reservations.ReserveInput) (*models.Reservation, error) {
	s.lastReserve = in
	return s.reservation, s.err
}

func (s *stubReservationService) Fulfill(_ context.Context, _ uuid.UUID, _ types.Actor) (*models.ReservationHistory, error) {
	return s.history, s.err
}

func (s *stubReservationService) Cancel(_ context.Context, _ uuid.UUID, _ types.Actor) (*models.ReservationHistory, error) {
	return s.history, s.err
}

func (s *stubReservationService) ListForActor(_ context.Context, _ types.Actor) ([]models.Reservation, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.reservation == nil {
		return nil, nil
	}
	return []models.Reservation{*s.reservation}, nil
}

func (s *stubReservationService) ListHistory(_ context.Context, _ reservations.HistoryListInput, _ types.Actor) (*reservations.HistoryListResult, error) {
	return s.historyList, s.err
}

func sampleReservation() *models.Reservation {
	return &models.Reservation{
		ID:         uuid.New(),
		ItemID:     "G-LA-0001",
		Qty:        2,
		ForDate:    time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
		Status:     enums.ReservationStatusActive,
		ReservedBy: uuid.New(),
		CreatedAt:  time.Now(),
	}
}

func TestCreateReservationAcceptsPlainDate(t *testing.T) {
	svc := &stubReservationService{reservation: sampleReservation()}
	handler := CreateReservation(svc, nil)

	body := bytes.NewReader([]byte(`{"item_id":"G-LA-0001","qty":2,"for_date":"2026-09-14"}`))
	req := adminContext(httptest.NewRequest(http.MethodPost, "/api/v1/reservations", body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if !svc.lastReserve.ForDate.Equal(time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected reservation date %s", svc.lastReserve.ForDate)
	}
	if svc.lastReserve.Qty != 2 {
		t.Fatalf("unexpected qty %d", svc.lastReserve.Qty)
	}
}

func TestCreateReservationRejectsGarbageDate(t *testing.T) {
	handler := CreateReservation(&stubReservationService{reservation: sampleReservation()}, nil)

	body := bytes.NewReader([]byte(`{"item_id":"G-LA-0001","qty":2,"for_date":"morgen"}`))
	req := adminContext(httptest.NewRequest(http.MethodPost, "/api/v1/reservations", body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCreateReservationMapsAvailabilityConflict(t *testing.T) {
	svc := &stubReservationService{err: pkgerrors.New(pkgerrors.CodeInsufficientAvailability, "requested quantity exceeds availability")}
	handler := CreateReservation(svc, nil)

	body := bytes.NewReader([]byte(`{"item_id":"G-LA-0001","qty":50,"for_date":"2026-09-14"}`))
	req := adminContext(httptest.NewRequest(http.MethodPost, "/api/v1/reservations", body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}

func TestFulfillReservationReturnsHistoryRecord(t *testing.T) {
	res := sampleReservation()
	svc := &stubReservationService{history: &models.ReservationHistory{
		ID:            uuid.New(),
		ReservationID: res.ID,
		ItemID:        res.ItemID,
		Qty:           res.Qty,
		Status:        enums.ReservationStatusFulfilled,
		ReservedBy:    res.ReservedBy,
		ResolvedAt:    time.Now(),
	}}
	handler := FulfillReservation(svc, nil)

	req := adminContext(httptest.NewRequest(http.MethodPost, "/api/v1/reservations/"+res.ID.String()+"/fulfill", nil))
	req = withURLParam(req, "reservationID", res.ID.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data reservationHistoryDTO `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Status != enums.ReservationStatusFulfilled {
		t.Fatalf("unexpected status %s", envelope.Data.Status)
	}
}

func TestFulfillReservationRejectsMalformedID(t *testing.T) {
	handler := FulfillReservation(&stubReservationService{}, nil)

	req := adminContext(httptest.NewRequest(http.MethodPost, "/api/v1/reservations/not-a-uuid/fulfill", nil))
	req = withURLParam(req, "reservationID", "not-a-uuid")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
