package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/astrein-exzellent/lagerhub-backend/api/middleware"
	"github.com/astrein-exzellent/lagerhub-backend/api/responses"
	"github.com/astrein-exzellent/lagerhub-backend/api/validators"
	"github.com/astrein-exzellent/lagerhub-backend/internal/reservations"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/db/models"
	pkgerrors "github.com/astrein-exzellent/lagerhub-backend/pkg/errors"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/logger"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/pagination"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/types"
)

type createReservationRequest struct {
	ItemID  string  `json:"item_id" validate:"required"`
	Qty     int64   `json:"qty" validate:"required,min=1"`
	ForDate string  `json:"for_date" validate:"required"`
	ForWhom *string `json:"for_whom,omitempty" validate:"omitempty,max=200"`
}

// reservation dates arrive as plain calendar days from the dashboard but
// RFC 3339 is accepted for API clients.
func parseReservationDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// CreateReservation places a hold against an item's available quantity.
func CreateReservation(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservation service unavailable"))
			return
		}

		var body createReservationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		forDate, err := parseReservationDate(body.ForDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reservation date"))
			return
		}

		res, err := svc.Reserve(r.Context(), reservations.ReserveInput{
			ItemID:  strings.TrimSpace(body.ItemID),
			Qty:     body.Qty,
			ForDate: forDate,
			ForWhom: body.ForWhom,
			Actor:   middleware.ActorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toReservationDTO(*res))
	}
}

// ListReservations returns the caller's active holds; admins see all.
func ListReservations(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservation service unavailable"))
			return
		}

		rows, err := svc.ListForActor(r.Context(), middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"reservations": toReservationDTOs(rows)})
	}
}

// FulfillReservation converts a hold into a goods issue.
func FulfillReservation(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservation service unavailable"))
			return
		}
		resolveReservation(w, r, logg, svc.Fulfill)
	}
}

// CancelReservation releases a hold without touching total stock.
func CancelReservation(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservation service unavailable"))
			return
		}
		resolveReservation(w, r, logg, svc.Cancel)
	}
}

func resolveReservation(
	w http.ResponseWriter,
	r *http.Request,
	logg *logger.Logger,
	op func(ctx context.Context, reservationID uuid.UUID, actor types.Actor) (*models.ReservationHistory, error),
) {
	id, err := parseReservationID(r)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}

	record, err := op(r.Context(), id, middleware.ActorFromContext(r.Context()))
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}

	responses.WriteSuccess(w, toReservationHistoryDTO(*record))
}

// ListReservationHistory pages through resolved reservations. Admin only.
func ListReservationHistory(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservation service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListHistory(r.Context(), reservations.HistoryListInput{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		}, middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"records":     toReservationHistoryDTOs(result.Records),
			"next_cursor": result.NextCursor,
		})
	}
}

func parseReservationID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "reservationID"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reservation id")
	}
	return id, nil
}
