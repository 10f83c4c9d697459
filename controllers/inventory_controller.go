package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/learnclub/club-portal-backend/services"
)

type inventoryRequest struct {
	Name     string   `json:"name" binding:"required"`
	Quantity *float64 `json:"quantity" binding:"required"`
	Status   string   `json:"status"`
	Notes    string   `json:"notes"`
}

type inventoryStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) GetInventory(c *gin.Context) {
	items, err := h.svc.ListInventory(c.Request.Context(), viewer(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CreateInventoryItem: dữ liệu sai trả 400 kể cả khi người gọi không phải admin.
func (h *Handler) CreateInventoryItem(c *gin.Context) {
	var req inventoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.svc.CreateInventoryItem(c.Request.Context(), viewer(c), services.InventoryInput{
		Name:     req.Name,
		Quantity: *req.Quantity,
		Status:   req.Status,
		Notes:    req.Notes,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) UpdateInventoryStatus(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req inventoryStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.svc.SetInventoryStatus(c.Request.Context(), viewer(c), id, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) DeleteInventoryItem(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteInventoryItem(c.Request.Context(), viewer(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "item deleted"})
}
