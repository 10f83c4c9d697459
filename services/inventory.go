package services

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/learnclub/club-portal-backend/apperrors"
	"github.com/learnclub/club-portal-backend/models"
)

type InventoryInput struct {
	Name     string
	Quantity float64
	Status   string
	Notes    string
}

func parseInventoryStatus(raw string) (models.InventoryStatus, error) {
	status := models.InventoryStatus(strings.TrimSpace(raw))
	if status == "" {
		return models.InventoryAvailable, nil
	}
	if !status.Valid() {
		return "", apperrors.Validation("status must be available or in_use", apperrors.FieldError{Field: "status", Error: "oneof"})
	}
	return status, nil
}

// CreateInventoryItem kiểm tra dữ liệu trước, sau đó mới kiểm tra quyền admin.
func (s *Services) CreateInventoryItem(ctx context.Context, v *Viewer, in InventoryInput) (*models.InventoryItem, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.Validation("item name is required", apperrors.FieldError{Field: "name", Error: "required"})
	}
	q := in.Quantity
	if math.IsNaN(q) || math.IsInf(q, 0) || q < 0 {
		return nil, apperrors.Validation("quantity must be 0 or more", apperrors.FieldError{Field: "quantity", Error: "min"})
	}
	if q != math.Trunc(q) || q > math.MaxInt32 {
		return nil, apperrors.Validation("quantity must be a whole number", apperrors.FieldError{Field: "quantity", Error: "int"})
	}
	status, err := parseInventoryStatus(in.Status)
	if err != nil {
		return nil, err
	}

	if err := RequireAdmin(v, "only admins can manage inventory"); err != nil {
		return nil, err
	}
	item := &models.InventoryItem{
		Name:      name,
		Quantity:  int(q),
		Status:    status,
		Notes:     optional(in.Notes),
		CreatedBy: v.ID,
	}
	if err := s.Store.CreateInventoryItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Services) ListInventory(ctx context.Context, v *Viewer) ([]models.InventoryItem, error) {
	if err := RequireAdmin(v, "only admins can manage inventory"); err != nil {
		return nil, err
	}
	return s.Store.ListInventory(ctx)
}

func (s *Services) SetInventoryStatus(ctx context.Context, v *Viewer, id uuid.UUID, raw string) (*models.InventoryItem, error) {
	if err := RequireAdmin(v, "only admins can manage inventory"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw) == "" {
		return nil, apperrors.Validation("status is required", apperrors.FieldError{Field: "status", Error: "required"})
	}
	status, err := parseInventoryStatus(raw)
	if err != nil {
		return nil, err
	}
	if err := s.Store.UpdateInventoryStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.Store.GetInventoryItem(ctx, id)
}

func (s *Services) DeleteInventoryItem(ctx context.Context, v *Viewer, id uuid.UUID) error {
	if err := RequireAdmin(v, "only admins can manage inventory"); err != nil {
		return err
	}
	return s.Store.DeleteInventoryItem(ctx, id)
}
