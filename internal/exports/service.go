package exports

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/astrein-exzellent/lagerhub-backend/pkg/db/models"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/enums"
	pkgerrors "github.com/astrein-exzellent/lagerhub-backend/pkg/errors"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/types"
)

// Column layouts match the spreadsheets the warehouse team already uses,
// semicolon-separated so German Excel opens them without an import wizard.
var (
	itemHeader     = []string{"ID", "Name", "Typ", "Kategorie", "Lager", "Zustand", "Status", "Bestand"}
	movementHeader = []string{"Datum", "Uhrzeit", "Benutzer", "Artikel-ID", "Artikel", "Menge", "Alter Bestand", "Neuer Bestand"}
)

type itemSource interface {
	All(ctx context.Context) ([]models.Item, error)
}

type movementSource interface {
	All(ctx context.Context) ([]models.StockMovement, error)
}

// Service streams CSV exports of the item ledger and the movement log.
type Service interface {
	WriteItemsCSV(ctx context.Context, w io.Writer, actor types.Actor) error
	WriteMovementsCSV(ctx context.Context, w io.Writer, actor types.Actor) error
}

type service struct {
	items     itemSource
	movements movementSource
}

// NewService wires the export service with its data sources.
func NewService(items itemSource, movements movementSource) (Service, error) {
	if items == nil {
		return nil, fmt.Errorf("item source is required")
	}
	if movements == nil {
		return nil, fmt.Errorf("movement source is required")
	}
	return &service{items: items, movements: movements}, nil
}

func (s *service) WriteItemsCSV(ctx context.Context, w io.Writer, actor types.Actor) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins can export data")
	}

	items, err := s.items.All(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load items")
	}

	cw := newCSVWriter(w)
	if err := cw.Write(itemHeader); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv header")
	}
	for i := range items {
		item := &items[i]
		row := []string{
			item.ID,
			item.Name,
			itemTypeLabel(item.ItemType),
			item.Category,
			item.Warehouse,
			item.Condition,
			statusLabel(item.Status),
			strconv.FormatInt(item.Stock, 10),
		}
		if err := cw.Write(row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flush csv")
	}
	return nil
}

func (s *service) WriteMovementsCSV(ctx context.Context, w io.Writer, actor types.Actor) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins can export data")
	}

	rows, err := s.movements.All(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load movements")
	}

	cw := newCSVWriter(w)
	if err := cw.Write(movementHeader); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv header")
	}
	for i := range rows {
		m := &rows[i]
		record := []string{
			m.CreatedAt.Format("02.01.2006"),
			m.CreatedAt.Format("15:04"),
			m.ActorName,
			m.ItemID,
			m.ItemName,
			signedQty(m),
			strconv.FormatInt(m.PreviousStock, 10),
			strconv.FormatInt(m.NewStock, 10),
		}
		if err := cw.Write(record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flush csv")
	}
	return nil
}

func newCSVWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	return cw
}

// signedQty renders issues as negative so the column sums to the stock delta.
func signedQty(m *models.StockMovement) string {
	if m.MovementType == enums.MovementTypeWarenausgang {
		return strconv.FormatInt(-m.Qty, 10)
	}
	return "+" + strconv.FormatInt(m.Qty, 10)
}

func itemTypeLabel(t enums.ItemType) string {
	switch t {
	case enums.ItemTypeGeraet:
		return "Gerät"
	case enums.ItemTypeMaterial:
		return "Material"
	default:
		return string(t)
	}
}

func statusLabel(s enums.ItemStatus) string {
	switch s {
	case enums.ItemStatusVerfuegbar:
		return "Verfügbar"
	case enums.ItemStatusNichtVerfuegbar:
		return "Nicht verfügbar"
	default:
		return string(s)
	}
}
