package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/opsdesk/internal/httperr"
	"github.com/BruksfildServices01/opsdesk/internal/httpresp"
	"github.com/BruksfildServices01/opsdesk/internal/models"
	"github.com/BruksfildServices01/opsdesk/internal/store"
	ucRecord "github.com/BruksfildServices01/opsdesk/internal/usecase/record"
)

type ProductHandler struct {
	products *ucRecord.Service[models.Product]
}

func NewProductHandler(products *ucRecord.Service[models.Product]) *ProductHandler {
	return &ProductHandler{products: products}
}

// --------- Requests ---------

type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Active      *bool   `json:"active"`
	Category    string  `json:"category"`
}

type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Active      *bool    `json:"active,omitempty"`
	Category    *string  `json:"category,omitempty"`
}

// --------- Handlers ---------

func (h *ProductHandler) List(c *gin.Context) {
	var filters []store.Filter

	if category := strings.ToLower(strings.TrimSpace(c.Query("category"))); category != "" {
		filters = append(filters, store.Eq("category", category))
	}
	switch strings.TrimSpace(c.Query("active")) { // "true", "false" ou vazio
	case "true":
		filters = append(filters, store.Eq("active", true))
	case "false":
		filters = append(filters, store.Eq("active", false))
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	products, err := h.products.List(c.Request.Context(), filters, limit)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, products)
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	row := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Active:      true,
		Category:    strings.ToLower(strings.TrimSpace(req.Category)),
	}
	if req.Active != nil {
		row.Active = *req.Active
	}

	product, err := h.products.Create(c.Request.Context(), actorFrom(c), &row)
	if !httperr.WarnPartial(c, err) {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) Update(c *gin.Context) {
	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	patch := map[string]any{}
	if req.Name != nil {
		patch["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		patch["description"] = *req.Description
	}
	if req.Price != nil {
		patch["price"] = *req.Price
	}
	if req.Active != nil {
		patch["active"] = *req.Active
	}
	if req.Category != nil {
		patch["category"] = strings.ToLower(strings.TrimSpace(*req.Category))
	}

	product, err := h.products.Update(c.Request.Context(), actorFrom(c), c.Param("id"), patch)
	if !httperr.WarnPartial(c, err) {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	err := h.products.Delete(c.Request.Context(), actorFrom(c), c.Param("id"))
	if !httperr.WarnPartial(c, err) {
		httperr.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
