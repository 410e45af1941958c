package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/astrein-exzellent/lagerhub-backend/api/responses"
	"github.com/astrein-exzellent/lagerhub-backend/api/validators"
	"github.com/astrein-exzellent/lagerhub-backend/internal/movements"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/enums"
	pkgerrors "github.com/astrein-exzellent/lagerhub-backend/pkg/errors"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/logger"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/pagination"
)

// ListMovements pages through the goods receipt/issue ledger, newest first.
func ListMovements(repo movements.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "movement store unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := movements.ListFilter{
			ItemID: validators.SanitizeString(r.URL.Query().Get("item_id"), maxItemFieldLength),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("movement_type")); raw != "" {
			movementType, parseErr := enums.ParseMovementType(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid movement type"))
				return
			}
			filter.MovementType = &movementType
		}
		if from, parseErr := parseTimeQuery(r, "from"); parseErr != nil {
			responses.WriteError(r.Context(), logg, w, parseErr)
			return
		} else if from != nil {
			filter.From = from
		}
		if to, parseErr := parseTimeQuery(r, "to"); parseErr != nil {
			responses.WriteError(r.Context(), logg, w, parseErr)
			return
		} else if to != nil {
			filter.To = to
		}

		cursor, err := pagination.ParseCursor(r.URL.Query().Get("cursor"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor"))
			return
		}

		rows, err := repo.List(r.Context(), filter, pagination.LimitWithBuffer(limit), cursor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list movements"))
			return
		}

		nextCursor := ""
		if len(rows) > limit {
			rows = rows[:limit]
			last := rows[limit-1]
			nextCursor = pagination.EncodeCursor(pagination.Cursor{
				CreatedAt: last.CreatedAt,
				ID:        last.ID,
			})
		}

		responses.WriteSuccess(w, map[string]any{
			"movements":   toMovementDTOs(rows),
			"next_cursor": nextCursor,
		})
	}
}

func parseTimeQuery(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a date").WithDetails(map[string]any{"field": key})
	}
	return &t, nil
}
