package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/learnclub/club-portal-backend/apperrors"
	"github.com/learnclub/club-portal-backend/models"
)

const maxCommentLength = 4000

func (s *Services) AddComment(ctx context.Context, v *Viewer, resourceID uuid.UUID, content string) (*models.Comment, error) {
	if err := RequireAuthenticated(v); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.Validation("comment cannot be empty", apperrors.FieldError{Field: "content", Error: "required"})
	}
	if len([]rune(content)) > maxCommentLength {
		return nil, apperrors.Validation("comment is too long", apperrors.FieldError{Field: "content", Error: "max"})
	}
	if _, err := s.Store.GetResource(ctx, resourceID); err != nil {
		return nil, err
	}
	comment := &models.Comment{ResourceID: resourceID, UserID: v.ID, Content: content}
	if err := s.Store.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment chỉ cho tác giả hoặc admin.
func (s *Services) DeleteComment(ctx context.Context, v *Viewer, id uuid.UUID) error {
	if err := RequireAuthenticated(v); err != nil {
		return err
	}
	comment, err := s.Store.GetComment(ctx, id)
	if err != nil {
		return err
	}
	if err := RequireOwnerOrAdmin(v, comment.UserID, "you can only delete your own comments"); err != nil {
		return err
	}
	return s.Store.DeleteComment(ctx, id)
}
