package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/astrein-exzellent/lagerhub-backend/api/middleware"
	"github.com/astrein-exzellent/lagerhub-backend/internal/inventory"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/db/models"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/enums"
	pkgerrors "github.com/astrein-exzellent/lagerhub-backend/pkg/errors"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/types"
)

type stubInventoryService struct {
	item       *models.Item
	list       *inventory.ListResult
	err        error
	lastAdjust inventory.AdjustStockInput
}

func (s *stubInventoryService) Create(_ context.Context, _ inventory.CreateItemInput, _ types.Actor) (*models.Item, error) {
	return s.item, s.err
}

func (s *stubInventoryService) Update(_ context.Context, _ string, _ inventory.UpdateItemInput, _ types.Actor) (*models.Item, error) {
	return s.item, s.err
}

func (s *stubInventoryService) Delete(_ context.Context, _ string, _ types.Actor) error {
	return s.err
}

func (s *stubInventoryService) Get(_ context.Context, _ string) (*models.Item, error) {
	return s.item, s.err
}

func (s *stubInventoryService) List(_ context.Context, _ inventory.ListInput) (*inventory.ListResult, error) {
	return s.list, s.err
}

func (s *stubInventoryService) IncrementStock(_ context.Context, in inventory.AdjustStockInput) (*models.Item, error) {
	s.lastAdjust = in
	return s.item, s.err
}

func (s *stubInventoryService) DecrementStock(_ context.Context, in inventory.AdjustStockInput) (*models.Item, error) {
	s.lastAdjust = in
	return s.item, s.err
}

func adminContext(req *http.Request) *http.Request {
	actor := types.Actor{ID: uuid.New(), Name: "Admin", Role: enums.RoleAdmin}
	return req.WithContext(middleware.WithActor(req.Context(), actor))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func sampleItem() *models.Item {
	return &models.Item{
		ID:          "G-LA-0001",
		Name:        "Akkuschrauber",
		ItemType:    enums.ItemTypeGeraet,
		Category:    "Werkzeug",
		Warehouse:   "Lager A",
		Status:      enums.ItemStatusVerfuegbar,
		Stock:       10,
		ReservedQty: 4,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func TestCreateItemSuccess(t *testing.T) {
	svc := &stubInventoryService{item: sampleItem()}
	handler := CreateItem(svc, nil)

	payload := map[string]any{
		"id":            "G-LA-0001",
		"name":          "Akkuschrauber",
		"item_type":     "geraet",
		"category":      "Werkzeug",
		"warehouse":     "Lager A",
		"initial_stock": 10,
	}
	body, _ := json.Marshal(payload)
	req := adminContext(httptest.NewRequest(http.MethodPost, "/api/v1/items", bytes.NewReader(body)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data itemDTO `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != "G-LA-0001" {
		t.Fatalf("unexpected item id %s", envelope.Data.ID)
	}
	if envelope.Data.Available != 6 {
		t.Fatalf("expected derived availability 6 got %d", envelope.Data.Available)
	}
}

func TestCreateItemRejectsUnknownType(t *testing.T) {
	handler := CreateItem(&stubInventoryService{item: sampleItem()}, nil)

	payload := map[string]any{
		"id":            "G-LA-0001",
		"name":          "Akkuschrauber",
		"item_type":     "fahrzeug",
		"category":      "Werkzeug",
		"warehouse":     "Lager A",
		"initial_stock": 10,
	}
	body, _ := json.Marshal(payload)
	req := adminContext(httptest.NewRequest(http.MethodPost, "/api/v1/items", bytes.NewReader(body)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestItemIssueForwardsQuantity(t *testing.T) {
	svc := &stubInventoryService{item: sampleItem()}
	handler := ItemIssue(svc, nil)

	body := bytes.NewReader([]byte(`{"qty":3}`))
	req := adminContext(httptest.NewRequest(http.MethodPost, "/api/v1/items/G-LA-0001/issue", body))
	req = withURLParam(req, "itemID", "G-LA-0001")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastAdjust.ItemID != "G-LA-0001" || svc.lastAdjust.Qty != 3 {
		t.Fatalf("unexpected adjust input %+v", svc.lastAdjust)
	}
}

func TestItemIssueRejectsZeroQuantity(t *testing.T) {
	svc := &stubInventoryService{item: sampleItem()}
	handler := ItemIssue(svc, nil)

	body := bytes.NewReader([]byte(`{"qty":0}`))
	req := adminContext(httptest.NewRequest(http.MethodPost, "/api/v1/items/G-LA-0001/issue", body))
	req = withURLParam(req, "itemID", "G-LA-0001")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestItemIssueMapsReservedFloorConflict(t *testing.T) {
	svc := &stubInventoryService{err: pkgerrors.New(pkgerrors.CodeBelowReservedQuantity, "cannot issue below the reserved quantity")}
	handler := ItemIssue(svc, nil)

	body := bytes.NewReader([]byte(`{"qty":9}`))
	req := adminContext(httptest.NewRequest(http.MethodPost, "/api/v1/items/G-LA-0001/issue", body))
	req = withURLParam(req, "itemID", "G-LA-0001")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeBelowReservedQuantity) {
		t.Fatalf("unexpected error code %s", envelope.Error.Code)
	}
}

func TestListItemsRejectsBadLimit(t *testing.T) {
	handler := ListItems(&stubInventoryService{list: &inventory.ListResult{}}, nil)

	req := adminContext(httptest.NewRequest(http.MethodGet, "/api/v1/items?limit=9999", nil))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
