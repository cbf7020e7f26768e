package handlers

import (
	"net/http"
	"strings"

	"marketplace-backend/apperrors"
	"marketplace-backend/audit"
	"marketplace-backend/authz"
	"marketplace-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductHandler struct {
	DB    *gorm.DB
	Audit audit.Recorder
}

func productSnapshot(p models.Product) models.Product {
	p.Store = nil
	return p
}

// generateSKU is used when a product is created without one.
func generateSKU() string {
	return "SKU-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:10])
}

func loadProduct(db *gorm.DB, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := first(db.Preload("Store"), &product, "Product", "id = ?", id); err != nil {
		return nil, err
	}
	if product.Store == nil {
		return nil, apperrors.NotFound("Store")
	}
	return &product, nil
}

// ensureUniqueSKU fails when another product in the store, deleted or not,
// already uses sku.
func ensureUniqueSKU(db *gorm.DB, storeID uuid.UUID, sku string, except uuid.UUID) error {
	var count int64
	query := db.Unscoped().Model(&models.Product{}).Where("store_id = ? AND sku = ?", storeID, sku)
	if except != uuid.Nil {
		query = query.Where("id <> ?", except)
	}
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperrors.Conflict(0, "SKU %s is already used in this store", sku)
	}
	return nil
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req struct {
		StoreID       string   `json:"storeId" binding:"required,uuid"`
		Name          string   `json:"name" binding:"required,min=1,max=200"`
		Description   string   `json:"description" binding:"max=2000"`
		Price         *float64 `json:"price" binding:"required,gt=0"`
		StockQuantity *int     `json:"stockQuantity" binding:"omitempty,gte=0"`
		MinStockLevel *int     `json:"minStockLevel" binding:"omitempty,gte=0"`
		Category      string   `json:"category" binding:"max=100"`
		SKU           string   `json:"sku" binding:"max=64"`
		ImageURL      string   `json:"imageUrl" binding:"omitempty,url"`
		IsAvailable   *bool    `json:"isAvailable"`
	}
	if !bindJSON(c, &req) {
		return
	}

	actor, err := currentActor(c, h.DB)
	if err != nil {
		respondError(c, err)
		return
	}

	db := h.DB.WithContext(c.Request.Context())
	store, err := loadStore(db, uuid.MustParse(req.StoreID))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := authz.Authorize(actor, authz.ActionCreate, store); err != nil {
		respondError(c, err)
		return
	}

	product := models.Product{
		StoreID:     store.ID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       *req.Price,
		Category:    strings.TrimSpace(req.Category),
		SKU:         strings.TrimSpace(req.SKU),
		ImageURL:    req.ImageURL,
		IsAvailable: true,
	}
	if req.StockQuantity != nil {
		product.StockQuantity = *req.StockQuantity
	}
	if req.MinStockLevel != nil {
		product.MinStockLevel = *req.MinStockLevel
	}
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}
	if product.SKU == "" {
		product.SKU = generateSKU()
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := ensureUniqueSKU(tx, store.ID, product.SKU, uuid.Nil); err != nil {
			return err
		}
		return tx.Create(&product).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}

	emit(c, h.Audit, actor, audit.ActionCreate, "Product", product.ID, nil, productSnapshot(product))

	c.JSON(http.StatusCreated, product)
}

// ListProducts returns the products of the stores the caller may see.
// lowStock=true keeps products at or below their minimum stock level.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	actor, err := currentActor(c, h.DB)
	if err != nil {
		respondError(c, err)
		return
	}

	storeID, err := parseOptionalUUID("storeId", c.Query("storeId"))
	if err != nil {
		respondError(c, err)
		return
	}
	lowStock, err := queryBool(c, "lowStock")
	if err != nil {
		respondError(c, err)
		return
	}
	isAvailable, err := queryBool(c, "isAvailable")
	if err != nil {
		respondError(c, err)
		return
	}

	p := paginate(c)
	query := h.DB.WithContext(c.Request.Context()).Model(&models.Product{}).
		Scopes(authz.ScopeStoreChildren(actor, "products"))

	if storeID != nil {
		query = query.Where("products.store_id = ?", *storeID)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("products.category = ?", category)
	}
	if lowStock != nil && *lowStock {
		query = query.Where("products.stock_quantity <= products.min_stock_level")
	}
	if isAvailable != nil {
		query = query.Where("products.is_available = ?", *isAvailable)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("LOWER(products.name) LIKE LOWER(?) OR LOWER(products.sku) LIKE LOWER(?)", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}

	products := []models.Product{}
	if err := query.Order("products.name").Offset(p.Offset).Limit(p.Limit).Find(&products).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p.response("products", products, total))
}

type categorySummary struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// GetCategories groups the visible products by category.
func (h *ProductHandler) GetCategories(c *gin.Context) {
	actor, err := currentActor(c, h.DB)
	if err != nil {
		respondError(c, err)
		return
	}

	storeID, err := parseOptionalUUID("storeId", c.Query("storeId"))
	if err != nil {
		respondError(c, err)
		return
	}

	query := h.DB.WithContext(c.Request.Context()).Model(&models.Product{}).
		Scopes(authz.ScopeStoreChildren(actor, "products")).
		Where("products.category <> ''")
	if storeID != nil {
		query = query.Where("products.store_id = ?", *storeID)
	}

	categories := []categorySummary{}
	if err := query.Select("products.category AS category, COUNT(*) AS count").
		Group("products.category").Order("products.category").Scan(&categories).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	actor, err := currentActor(c, h.DB)
	if err != nil {
		respondError(c, err)
		return
	}

	product, err := loadProduct(h.DB.WithContext(c.Request.Context()), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := authz.Authorize(actor, authz.ActionRead, product.Store); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product":  product,
		"lowStock": product.IsLowStock(),
	})
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		StoreID       *string  `json:"storeId"`
		Name          *string  `json:"name" binding:"omitempty,min=1,max=200"`
		Description   *string  `json:"description" binding:"omitempty,max=2000"`
		Price         *float64 `json:"price" binding:"omitempty,gt=0"`
		StockQuantity *int     `json:"stockQuantity" binding:"omitempty,gte=0"`
		MinStockLevel *int     `json:"minStockLevel" binding:"omitempty,gte=0"`
		Category      *string  `json:"category" binding:"omitempty,max=100"`
		SKU           *string  `json:"sku" binding:"omitempty,min=1,max=64"`
		ImageURL      *string  `json:"imageUrl" binding:"omitempty,url"`
		IsAvailable   *bool    `json:"isAvailable"`
	}
	if !bindJSON(c, &req) {
		return
	}

	actor, err := currentActor(c, h.DB)
	if err != nil {
		respondError(c, err)
		return
	}

	db := h.DB.WithContext(c.Request.Context())
	product, err := loadProduct(db, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := authz.Authorize(actor, authz.ActionUpdate, product.Store); err != nil {
		respondError(c, err)
		return
	}

	if req.StoreID != nil && *req.StoreID != product.StoreID.String() {
		respondError(c, apperrors.Validation("storeId", "storeId cannot be changed after creation"))
		return
	}

	before := productSnapshot(*product)
	after := before

	if req.Name != nil {
		after.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		after.Description = *req.Description
	}
	if req.Price != nil {
		after.Price = *req.Price
	}
	if req.StockQuantity != nil {
		after.StockQuantity = *req.StockQuantity
	}
	if req.MinStockLevel != nil {
		after.MinStockLevel = *req.MinStockLevel
	}
	if req.Category != nil {
		after.Category = strings.TrimSpace(*req.Category)
	}
	if req.SKU != nil {
		after.SKU = strings.TrimSpace(*req.SKU)
	}
	if req.ImageURL != nil {
		after.ImageURL = *req.ImageURL
	}
	if req.IsAvailable != nil {
		after.IsAvailable = *req.IsAvailable
	}

	if !sameSnapshot(before, after) {
		err = db.Transaction(func(tx *gorm.DB) error {
			if after.SKU != before.SKU {
				if err := ensureUniqueSKU(tx, after.StoreID, after.SKU, after.ID); err != nil {
					return err
				}
			}
			return tx.Save(&after).Error
		})
		if err != nil {
			respondError(c, err)
			return
		}
	}

	emit(c, h.Audit, actor, audit.ActionUpdate, "Product", after.ID, before, after)

	c.JSON(http.StatusOK, after)
}

// DeleteProduct refuses while order items reference the product.
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	actor, err := currentActor(c, h.DB)
	if err != nil {
		respondError(c, err)
		return
	}

	db := h.DB.WithContext(c.Request.Context())
	product, err := loadProduct(db, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := authz.Authorize(actor, authz.ActionDelete, product.Store); err != nil {
		respondError(c, err)
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var itemCount int64
		if err := tx.Model(&models.OrderItem{}).Where("product_id = ?", product.ID).Count(&itemCount).Error; err != nil {
			return err
		}
		if itemCount > 0 {
			return apperrors.Conflict(itemCount, "Cannot delete product referenced by %d order items. Mark it unavailable instead.", itemCount)
		}
		return tx.Delete(&models.Product{}, "id = ?", product.ID).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}

	emit(c, h.Audit, actor, audit.ActionDelete, "Product", product.ID, productSnapshot(*product), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

type productPatch struct {
	Price         *float64 `json:"price" binding:"omitempty,gt=0"`
	StockQuantity *int     `json:"stockQuantity" binding:"omitempty,gte=0"`
	MinStockLevel *int     `json:"minStockLevel" binding:"omitempty,gte=0"`
	Category      *string  `json:"category" binding:"omitempty,max=100"`
	IsAvailable   *bool    `json:"isAvailable"`
}

func (p productPatch) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.Price != nil {
		cols["price"] = *p.Price
	}
	if p.StockQuantity != nil {
		cols["stock_quantity"] = *p.StockQuantity
	}
	if p.MinStockLevel != nil {
		cols["min_stock_level"] = *p.MinStockLevel
	}
	if p.Category != nil {
		cols["category"] = strings.TrimSpace(*p.Category)
	}
	if p.IsAvailable != nil {
		cols["is_available"] = *p.IsAvailable
	}
	return cols
}

// BulkUpdateProducts applies one patch to many products. Every product must
// exist and, for store owners, belong to one of their stores; otherwise
// nothing is written.
func (h *ProductHandler) BulkUpdateProducts(c *gin.Context) {
	var req struct {
		ProductIDs []string      `json:"productIds" binding:"required,min=1,max=500,dive,uuid"`
		Updates    *productPatch `json:"updates" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	cols := req.Updates.columns()
	if len(cols) == 0 {
		respondError(c, apperrors.Validation("updates", "updates must set at least one field"))
		return
	}

	seen := make(map[uuid.UUID]bool, len(req.ProductIDs))
	ids := make([]uuid.UUID, 0, len(req.ProductIDs))
	for _, raw := range req.ProductIDs {
		id := uuid.MustParse(raw)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	actor, err := currentActor(c, h.DB)
	if err != nil {
		respondError(c, err)
		return
	}

	db := h.DB.WithContext(c.Request.Context())

	var before []models.Product
	if err := db.Where("id IN ?", ids).Order("name").Find(&before).Error; err != nil {
		respondError(c, err)
		return
	}
	if len(before) != len(ids) {
		respondError(c, apperrors.NotFound("Product"))
		return
	}

	owned, err := authz.OwnedStoreIDs(db, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	if owned != nil {
		for _, p := range before {
			if !owned[p.StoreID] {
				respondError(c, apperrors.AccessDenied("product "+p.ID.String()+" belongs to another store"))
				return
			}
		}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.Product{}).Where("id IN ?", ids).Updates(cols).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}

	var after []models.Product
	if err := db.Where("id IN ?", ids).Order("name").Find(&after).Error; err != nil {
		respondError(c, err)
		return
	}

	previous := make(map[uuid.UUID]models.Product, len(before))
	for _, p := range before {
		previous[p.ID] = p
	}
	for _, p := range after {
		emit(c, h.Audit, actor, audit.ActionUpdate, "Product", p.ID, previous[p.ID], p)
	}

	c.JSON(http.StatusOK, gin.H{
		"updated":  len(after),
		"products": after,
	})
}
