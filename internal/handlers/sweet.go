package handlers

import (
	"errors"
	"net/http"
	"strconv"

	dom "Sweetshop/internal/domain"
	"Sweetshop/internal/dto"
	"Sweetshop/internal/service"

	"github.com/gin-gonic/gin"
)

type SweetHandler struct {
	svc *service.SweetService
}

func NewSweetHandler(svc *service.SweetService) *SweetHandler {
	return &SweetHandler{svc: svc}
}

// Create godoc
// @Summary      Create a sweet
// @Tags         sweets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.CreateSweetRequest  true  "Sweet body"
// @Success      201   {object}  dto.SweetResponse
// @Failure      400   {object}  map[string]string
// @Router       /sweets [post]
func (h *SweetHandler) Create(c *gin.Context) {
	var req dto.CreateSweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sw, err := h.svc.Create(c.Request.Context(), req.Name, req.Category, req.Price, req.Quantity)
	if err != nil {
		if isValidationErr(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, sweetToResponse(sw))
}

// List godoc
// @Summary      List sweets
// @Tags         sweets
// @Produce      json
// @Security     BearerAuth
// @Param        skip   query  int  false  "Offset"  default(0)
// @Param        limit  query  int  false  "Page size"  default(100)
// @Success      200  {array}   dto.SweetResponse
// @Failure      500  {object}  map[string]string
// @Router       /sweets [get]
func (h *SweetHandler) List(c *gin.Context) {
	skip, ok := parseQueryInt(c, "skip", 0)
	if !ok {
		return
	}
	limit, ok := parseQueryInt(c, "limit", 100)
	if !ok {
		return
	}
	list, err := h.svc.List(c.Request.Context(), skip, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sweetsToResponses(list))
}

// Search godoc
// @Summary      Search sweets by name, category or price range
// @Tags         sweets
// @Produce      json
// @Security     BearerAuth
// @Param        name       query  string  false  "Name substring (case-insensitive)"
// @Param        category   query  string  false  "Category substring (case-insensitive)"
// @Param        min_price  query  number  false  "Minimum price"
// @Param        max_price  query  number  false  "Maximum price"
// @Success      200  {array}   dto.SweetResponse
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /sweets/search [get]
func (h *SweetHandler) Search(c *gin.Context) {
	f := dom.SweetFilter{
		Name:     c.Query("name"),
		Category: c.Query("category"),
	}
	var ok bool
	if f.MinPrice, ok = parseQueryFloat(c, "min_price"); !ok {
		return
	}
	if f.MaxPrice, ok = parseQueryFloat(c, "max_price"); !ok {
		return
	}
	list, err := h.svc.Search(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sweetsToResponses(list))
}

// GetByID godoc
// @Summary      Get a sweet by ID
// @Tags         sweets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Sweet ID"
// @Success      200  {object}  dto.SweetResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /sweets/{id} [get]
func (h *SweetHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	sw, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sweet not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sweetToResponse(sw))
}

// Update godoc
// @Summary      Update a sweet (partial)
// @Tags         sweets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int  true  "Sweet ID"
// @Param        body  body      dto.UpdateSweetRequest  true  "Fields to change"
// @Success      200   {object}  dto.SweetResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /sweets/{id} [put]
func (h *SweetHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateSweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sw, err := h.svc.Update(c.Request.Context(), id, dom.SweetPatch{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Quantity: req.Quantity,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Sweet not found"})
		case isValidationErr(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, sweetToResponse(sw))
}

// Delete godoc
// @Summary      Delete a sweet (admin only)
// @Tags         sweets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Sweet ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /sweets/{id} [delete]
func (h *SweetHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sweet not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sweet deleted successfully"})
}

// Purchase godoc
// @Summary      Purchase a sweet, decreasing its quantity
// @Tags         sweets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int  true  "Sweet ID"
// @Param        body  body      dto.AmountRequest  true  "Units to purchase"
// @Success      200   {object}  dto.StockResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /sweets/{id}/purchase [post]
func (h *SweetHandler) Purchase(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sw, err := h.svc.Purchase(c.Request.Context(), id, req.Quantity)
	if err != nil {
		var stockErr *dom.InsufficientStockError
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Sweet not found"})
		case errors.As(err, &stockErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": stockErr.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, dto.StockResponse{
		Message:   "Purchase successful",
		SweetID:   sw.ID,
		Name:      sw.Name,
		Quantity:  sw.Quantity,
		Purchased: req.Quantity,
	})
}

// Restock godoc
// @Summary      Restock a sweet, increasing its quantity (admin only)
// @Tags         sweets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int  true  "Sweet ID"
// @Param        body  body      dto.AmountRequest  true  "Units to add"
// @Success      200   {object}  dto.StockResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /sweets/{id}/restock [post]
func (h *SweetHandler) Restock(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sw, err := h.svc.Restock(c.Request.Context(), id, req.Quantity)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sweet not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.StockResponse{
		Message:   "Restock successful",
		SweetID:   sw.ID,
		Name:      sw.Name,
		Quantity:  sw.Quantity,
		Restocked: req.Quantity,
	})
}

func isValidationErr(err error) bool {
	return errors.Is(err, service.ErrNameRequired) ||
		errors.Is(err, service.ErrCategoryRequired) ||
		errors.Is(err, service.ErrPriceInvalid) ||
		errors.Is(err, service.ErrQuantityInvalid)
}

func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func parseQueryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return n, true
}

func parseQueryFloat(c *gin.Context, name string) (*float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return nil, false
	}
	return &v, true
}

func sweetToResponse(s dom.Sweet) dto.SweetResponse {
	return dto.SweetResponse{
		ID:        s.ID,
		Name:      s.Name,
		Category:  s.Category,
		Price:     s.Price,
		Quantity:  s.Quantity,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func sweetsToResponses(list []dom.Sweet) []dto.SweetResponse {
	out := make([]dto.SweetResponse, len(list))
	for i := range list {
		out[i] = sweetToResponse(list[i])
	}
	return out
}
