package handlers

import (
	"net/http"
	"testing"

	"marketplace-backend/audit"
	"marketplace-backend/models"

	"github.com/google/uuid"
)

func TestCreateProduct(t *testing.T) {
	db := freshDB()
	rec := &captureRecorder{}
	router := setupStoreRouter(db, rec)
	profile, token := seedOwnerWithToken(db, "owner@test.com")
	store := seedStore(db, "Mine", profile.ID)

	w := serve(router, authRequest("POST", "/api/stores/products", map[string]interface{}{
		"storeId":       store.ID,
		"name":          "Oat Milk",
		"price":         2.49,
		"stockQuantity": 30,
		"minStockLevel": 5,
		"category":      "Dairy",
	}, token))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	if resp["isAvailable"] != true {
		t.Errorf("expected product to default to available, got %v", resp["isAvailable"])
	}
	if sku, _ := resp["sku"].(string); sku == "" {
		t.Error("expected a generated SKU")
	}
	if events := rec.Events(); len(events) != 1 || events[0].EntityType != "Product" {
		t.Errorf("expected one Product event, got %+v", events)
	}
}

func TestCreateProductNegativePriceRejected(t *testing.T) {
	db := freshDB()
	rec := &captureRecorder{}
	router := setupStoreRouter(db, rec)
	_, token := seedOwnerWithToken(db, "owner@test.com")

	// The store does not exist: validation must fail before any lookup.
	w := serve(router, authRequest("POST", "/api/stores/products", map[string]interface{}{
		"storeId": uuid.New(), "name": "Broken", "price": -1,
	}, token))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
	if parseResponse(w)["field"] != "price" {
		t.Errorf("expected field 'price', got %v", parseResponse(w)["field"])
	}
	if len(rec.Events()) != 0 {
		t.Error("expected no audit events")
	}
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	db := freshDB()
	router := setupStoreRouter(db, audit.Discard)
	profile, token := seedOwnerWithToken(db, "owner@test.com")
	store := seedStore(db, "Mine", profile.ID)
	seedProduct(db, store.ID, "Tea", 10, 1)

	w := serve(router, authRequest("POST", "/api/stores/products", map[string]interface{}{
		"storeId": store.ID, "name": "Other Tea", "price": 3.0, "sku": "SKU-Tea",
	}, token))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateProductForeignStoreDenied(t *testing.T) {
	db := freshDB()
	router := setupStoreRouter(db, audit.Discard)
	_, token := seedOwnerWithToken(db, "mine@test.com")
	theirs, _ := seedOwnerWithToken(db, "theirs@test.com")
	store := seedStore(db, "Theirs", theirs.ID)

	w := serve(router, authRequest("POST", "/api/stores/products", map[string]interface{}{
		"storeId": store.ID, "name": "Sneaky", "price": 1.0,
	}, token))
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestListProductsLowStock(t *testing.T) {
	db := freshDB()
	router := setupStoreRouter(db, audit.Discard)
	profile, token := seedOwnerWithToken(db, "owner@test.com")
	store := seedStore(db, "Mine", profile.ID)
	seedProduct(db, store.ID, "Scarce", 5, 10)
	seedProduct(db, store.ID, "Plenty", 20, 10)

	w := serve(router, authRequest("GET", "/api/stores/products?lowStock=true", nil, token))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	products := parseResponse(w)["products"].([]interface{})
	if len(products) != 1 || products[0].(map[string]interface{})["name"] != "Scarce" {
		t.Errorf("expected only Scarce, got %v", products)
	}
}

func TestListProductsScopedToOwner(t *testing.T) {
	db := freshDB()
	router := setupStoreRouter(db, audit.Discard)
	mine, token := seedOwnerWithToken(db, "mine@test.com")
	theirs, _ := seedOwnerWithToken(db, "theirs@test.com")
	seedProduct(db, seedStore(db, "Mine", mine.ID).ID, "Apples", 10, 1)
	seedProduct(db, seedStore(db, "Theirs", theirs.ID).ID, "Pears", 10, 1)

	w := serve(router, authRequest("GET", "/api/stores/products?search=a", nil, token))
	resp := parseResponse(w)
	if resp["total"] != float64(1) {
		t.Fatalf("expected 1 visible product, got %v", resp["total"])
	}
	if resp["products"].([]interface{})[0].(map[string]interface{})["name"] != "Apples" {
		t.Errorf("expected Apples, got %v", resp["products"])
	}
}

func TestGetCategories(t *testing.T) {
	db := freshDB()
	router := setupStoreRouter(db, audit.Discard)
	profile, token := seedOwnerWithToken(db, "owner@test.com")
	store := seedStore(db, "Mine", profile.ID)
	seedProduct(db, store.ID, "A", 1, 0)
	seedProduct(db, store.ID, "B", 1, 0)
	db.Create(&models.Product{StoreID: store.ID, Name: "C", Price: 1, Category: "Snacks", SKU: "c"})
	db.Create(&models.Product{StoreID: store.ID, Name: "D", Price: 1, SKU: "d"})

	for _, path := range []string{"/api/stores/product-categories", "/api/stores/products/categories"} {
		w := serve(router, authRequest("GET", path, nil, token))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected status 200, got %d: %s", path, w.Code, w.Body.String())
		}
		categories := parseResponseArray(w)
		if len(categories) != 2 {
			t.Fatalf("%s: expected 2 categories, got %v", path, categories)
		}
		general := categories[0].(map[string]interface{})
		if general["category"] != "General" || general["count"] != float64(2) {
			t.Errorf("%s: expected General x2 first, got %v", path, general)
		}
	}
}

func TestUpdateProductStoreImmutable(t *testing.T) {
	db := freshDB()
	router := setupStoreRouter(db, audit.Discard)
	profile, token := seedOwnerWithToken(db, "owner@test.com")
	store := seedStore(db, "Mine", profile.ID)
	other := seedStore(db, "Also mine", profile.ID)
	product := seedProduct(db, store.ID, "Jam", 4, 1)

	w := serve(router, authRequest("PUT", "/api/stores/products/"+product.ID.String(), map[string]interface{}{
		"storeId": other.ID,
	}, token))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
	if parseResponse(w)["field"] != "storeId" {
		t.Errorf("expected field storeId, got %v", parseResponse(w)["field"])
	}
}

func TestUpdateProductIdempotent(t *testing.T) {
	db := freshDB()
	rec := &captureRecorder{}
	router := setupStoreRouter(db, rec)
	profile, token := seedOwnerWithToken(db, "owner@test.com")
	product := seedProduct(db, seedStore(db, "Mine", profile.ID).ID, "Jam", 4, 1)
	url := "/api/stores/products/" + product.ID.String()
	body := map[string]interface{}{"price": 5.5, "stockQuantity": 12}

	for i := 0; i < 2; i++ {
		if w := serve(router, authRequest("PUT", url, body, token)); w.Code != http.StatusOK {
			t.Fatalf("update %d: expected 200, got %d: %s", i, w.Code, w.Body.String())
		}
	}

	events := rec.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if !sameSnapshot(events[1].Before, events[1].After) {
		t.Error("expected identical snapshots for the repeated update")
	}

	var saved models.Product
	db.First(&saved, "id = ?", product.ID)
	if saved.Price != 5.5 || saved.StockQuantity != 12 {
		t.Errorf("expected price 5.5 and stock 12, got %v and %d", saved.Price, saved.StockQuantity)
	}
}

func TestDeleteProductReferencedByOrder(t *testing.T) {
	db := freshDB()
	router := setupStoreRouter(db, audit.Discard)
	profile, token := seedOwnerWithToken(db, "owner@test.com")
	customer, _ := seedTestUser(db, "c@test.com", models.RoleCustomer)
	store := seedStore(db, "Mine", profile.ID)
	product := seedProduct(db, store.ID, "Jam", 4, 1)
	seedOrder(db, store.ID, customer.ID, &product.ID)

	w := serve(router, authRequest("DELETE", "/api/stores/products/"+product.ID.String(), nil, token))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", w.Code, w.Body.String())
	}

	unused := seedProduct(db, store.ID, "Honey", 4, 1)
	w = serve(router, authRequest("DELETE", "/api/stores/products/"+unused.ID.String(), nil, token))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestBulkUpdateProducts(t *testing.T) {
	db := freshDB()
	rec := &captureRecorder{}
	router := setupStoreRouter(db, rec)
	profile, token := seedOwnerWithToken(db, "owner@test.com")
	store := seedStore(db, "Mine", profile.ID)
	a := seedProduct(db, store.ID, "A", 1, 0)
	b := seedProduct(db, store.ID, "B", 2, 0)

	w := serve(router, authRequest("PUT", "/api/stores/products/bulk", map[string]interface{}{
		"productIds": []string{a.ID.String(), b.ID.String()},
		"updates":    map[string]interface{}{"isAvailable": false, "category": "Clearance"},
	}, token))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if parseResponse(w)["updated"] != float64(2) {
		t.Errorf("expected 2 updated, got %v", parseResponse(w)["updated"])
	}

	var count int64
	db.Model(&models.Product{}).Where("category = ? AND is_available = ?", "Clearance", false).Count(&count)
	if count != 2 {
		t.Errorf("expected 2 clearance products, got %d", count)
	}
	if len(rec.Events()) != 2 {
		t.Errorf("expected one event per product, got %d", len(rec.Events()))
	}
}

func TestBulkUpdateProductsForeignRejectsWholeBatch(t *testing.T) {
	db := freshDB()
	rec := &captureRecorder{}
	router := setupStoreRouter(db, rec)
	mine, token := seedOwnerWithToken(db, "mine@test.com")
	theirs, _ := seedOwnerWithToken(db, "theirs@test.com")
	own := seedProduct(db, seedStore(db, "Mine", mine.ID).ID, "Own", 1, 0)
	foreign := seedProduct(db, seedStore(db, "Theirs", theirs.ID).ID, "Foreign", 1, 0)

	w := serve(router, authRequest("PUT", "/api/stores/products/bulk", map[string]interface{}{
		"productIds": []string{own.ID.String(), foreign.ID.String()},
		"updates":    map[string]interface{}{"price": 100},
	}, token))
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d: %s", w.Code, w.Body.String())
	}

	var saved models.Product
	db.First(&saved, "id = ?", own.ID)
	if saved.Price != 9.99 {
		t.Errorf("expected own product untouched, got price %v", saved.Price)
	}
	if len(rec.Events()) != 0 {
		t.Error("expected no audit events for a rejected batch")
	}
}

func TestBulkUpdateProductsValidation(t *testing.T) {
	db := freshDB()
	router := setupStoreRouter(db, audit.Discard)
	profile, token := seedOwnerWithToken(db, "owner@test.com")
	p := seedProduct(db, seedStore(db, "Mine", profile.ID).ID, "A", 1, 0)

	cases := []struct {
		name string
		body map[string]interface{}
		code int
	}{
		{"empty ids", map[string]interface{}{"productIds": []string{}, "updates": map[string]interface{}{"price": 1}}, http.StatusBadRequest},
		{"empty updates", map[string]interface{}{"productIds": []string{p.ID.String()}, "updates": map[string]interface{}{}}, http.StatusBadRequest},
		{"bad id", map[string]interface{}{"productIds": []string{"nope"}, "updates": map[string]interface{}{"price": 1}}, http.StatusBadRequest},
		{"missing product", map[string]interface{}{"productIds": []string{uuid.New().String()}, "updates": map[string]interface{}{"price": 1}}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(router, authRequest("PUT", "/api/stores/products/bulk", tc.body, token))
			if w.Code != tc.code {
				t.Fatalf("expected status %d, got %d: %s", tc.code, w.Code, w.Body.String())
			}
		})
	}
}
