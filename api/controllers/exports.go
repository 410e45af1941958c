package controllers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/astrein-exzellent/lagerhub-backend/api/middleware"
	"github.com/astrein-exzellent/lagerhub-backend/api/responses"
	"github.com/astrein-exzellent/lagerhub-backend/internal/exports"
	pkgerrors "github.com/astrein-exzellent/lagerhub-backend/pkg/errors"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/logger"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/types"
)

// ExportItemsCSV streams the full stock ledger as a semicolon CSV download.
func ExportItemsCSV(svc exports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "export service unavailable"))
			return
		}
		writeCSV(w, r, logg, "bestand", svc.WriteItemsCSV)
	}
}

// ExportMovementsCSV streams the movement ledger as a semicolon CSV download.
func ExportMovementsCSV(svc exports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "export service unavailable"))
			return
		}
		writeCSV(w, r, logg, "bewegungen", svc.WriteMovementsCSV)
	}
}

// writeCSV buffers the export before touching the response so a failure
// mid-write still produces a clean JSON error instead of a torn download.
func writeCSV(
	w http.ResponseWriter,
	r *http.Request,
	logg *logger.Logger,
	name string,
	write func(ctx context.Context, w io.Writer, actor types.Actor) error,
) {
	var buf bytes.Buffer
	if err := write(r.Context(), &buf, middleware.ActorFromContext(r.Context())); err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", csvFilename(name, time.Now())))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func csvFilename(name string, now time.Time) string {
	return fmt.Sprintf("%s_%s.csv", name, now.Format("2006-01-02"))
}
