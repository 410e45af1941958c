package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/astrein-exzellent/lagerhub-backend/api/middleware"
	"github.com/astrein-exzellent/lagerhub-backend/api/responses"
	"github.com/astrein-exzellent/lagerhub-backend/api/validators"
	"github.com/astrein-exzellent/lagerhub-backend/internal/inventory"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/db/models"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/enums"
	pkgerrors "github.com/astrein-exzellent/lagerhub-backend/pkg/errors"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/logger"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/pagination"
)

const maxItemFieldLength = 200

type createItemRequest struct {
	ID           string `json:"id" validate:"required,max=64"`
	Name         string `json:"name" validate:"required,max=200"`
	ItemType     string `json:"item_type" validate:"required"`
	Category     string `json:"category" validate:"required,max=200"`
	Warehouse    string `json:"warehouse" validate:"required,max=200"`
	Condition    string `json:"condition,omitempty" validate:"omitempty,max=200"`
	InitialStock int64  `json:"initial_stock" validate:"min=0"`
}

type updateItemRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,max=200"`
	ItemType  *string `json:"item_type,omitempty"`
	Category  *string `json:"category,omitempty" validate:"omitempty,max=200"`
	Warehouse *string `json:"warehouse,omitempty" validate:"omitempty,max=200"`
	Condition *string `json:"condition,omitempty" validate:"omitempty,max=200"`
}

type adjustStockRequest struct {
	Qty int64 `json:"qty" validate:"required,min=1"`
}

// CreateItem registers a new item in the stock ledger.
func CreateItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var body createItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemType, err := enums.ParseItemType(strings.TrimSpace(body.ItemType))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item type"))
			return
		}

		input := inventory.CreateItemInput{
			ID:           validators.SanitizeString(body.ID, maxItemFieldLength),
			Name:         validators.SanitizeString(body.Name, maxItemFieldLength),
			ItemType:     itemType,
			Category:     validators.SanitizeString(body.Category, maxItemFieldLength),
			Warehouse:    validators.SanitizeString(body.Warehouse, maxItemFieldLength),
			Condition:    validators.SanitizeString(body.Condition, maxItemFieldLength),
			InitialStock: body.InitialStock,
		}

		item, err := svc.Create(r.Context(), input, middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toItemDTO(*item))
	}
}

// UpdateItem mutates descriptive item fields. Stock is out of scope here.
func UpdateItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var body updateItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := inventory.UpdateItemInput{
			Name:      body.Name,
			Category:  body.Category,
			Warehouse: body.Warehouse,
			Condition: body.Condition,
		}
		if body.ItemType != nil {
			itemType, err := enums.ParseItemType(strings.TrimSpace(*body.ItemType))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item type"))
				return
			}
			input.ItemType = &itemType
		}

		item, err := svc.Update(r.Context(), chi.URLParam(r, "itemID"), input, middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toItemDTO(*item))
	}
}

// DeleteItem removes an item. Rejected while active reservations exist.
func DeleteItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		if err := svc.Delete(r.Context(), chi.URLParam(r, "itemID"), middleware.ActorFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// GetItem returns a single ledger row.
func GetItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		item, err := svc.Get(r.Context(), chi.URLParam(r, "itemID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toItemDTO(*item))
	}
}

// ListItems pages through the ledger with optional filters.
func ListItems(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := inventory.ListFilter{
			Search:    validators.SanitizeString(r.URL.Query().Get("search"), maxItemFieldLength),
			Category:  validators.SanitizeString(r.URL.Query().Get("category"), maxItemFieldLength),
			Warehouse: validators.SanitizeString(r.URL.Query().Get("warehouse"), maxItemFieldLength),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("item_type")); raw != "" {
			itemType, parseErr := enums.ParseItemType(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid item type"))
				return
			}
			filter.ItemType = &itemType
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, parseErr := enums.ParseItemStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid item status"))
				return
			}
			filter.Status = &status
		}

		result, err := svc.List(r.Context(), inventory.ListInput{
			Filter: filter,
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"items":       toItemDTOs(result.Items),
			"next_cursor": result.NextCursor,
		})
	}
}

// ItemReceipt books a goods receipt, raising total stock.
func ItemReceipt(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}
		adjustStock(w, r, logg, svc.IncrementStock)
	}
}

// ItemIssue books a goods issue, lowering stock down to the reserved floor.
func ItemIssue(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}
		adjustStock(w, r, logg, svc.DecrementStock)
	}
}

func adjustStock(
	w http.ResponseWriter,
	r *http.Request,
	logg *logger.Logger,
	op func(ctx context.Context, in inventory.AdjustStockInput) (*models.Item, error),
) {
	var body adjustStockRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}

	item, err := op(r.Context(), inventory.AdjustStockInput{
		ItemID: chi.URLParam(r, "itemID"),
		Qty:    body.Qty,
		Actor:  middleware.ActorFromContext(r.Context()),
	})
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}

	responses.WriteSuccess(w, toItemDTO(*item))
}
