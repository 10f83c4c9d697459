package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/learnclub/club-portal-backend/apperrors"
	"github.com/learnclub/club-portal-backend/models"
)

type AttendanceInput struct {
	UserID    uuid.UUID
	EventDate string
	Attended  bool
}

// RecordAttendance upsert theo (user, ngày): đánh dấu lại cùng ngày sẽ ghi đè.
func (s *Services) RecordAttendance(ctx context.Context, v *Viewer, in AttendanceInput) (*models.Attendance, error) {
	if err := RequireAdmin(v, "only admins can record attendance"); err != nil {
		return nil, err
	}
	if in.UserID == uuid.Nil {
		return nil, apperrors.Validation("user is required", apperrors.FieldError{Field: "user_id", Error: "required"})
	}
	day, err := models.ParseDate(in.EventDate)
	if err != nil {
		return nil, apperrors.Invalid(err, apperrors.FieldError{Field: "event_date", Error: "date"})
	}
	if _, err := s.Store.GetUser(ctx, in.UserID); err != nil {
		return nil, err
	}
	record := &models.Attendance{UserID: in.UserID, EventDate: day, Attended: in.Attended, UpdatedAt: s.Now()}
	if err := s.Store.UpsertAttendance(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// ListAttendance trả mọi bản ghi, hoặc của một ngày khi date khác rỗng.
func (s *Services) ListAttendance(ctx context.Context, v *Viewer, date string) ([]models.Attendance, error) {
	if err := RequireAdmin(v, "only admins can view attendance"); err != nil {
		return nil, err
	}
	filter, err := parseOptionalDate("date", date)
	if err != nil {
		return nil, err
	}
	return s.Store.ListAttendance(ctx, filter)
}

func (s *Services) MyAttendance(ctx context.Context, v *Viewer) ([]models.Attendance, error) {
	if err := RequireAuthenticated(v); err != nil {
		return nil, err
	}
	return s.Store.ListAttendanceForUser(ctx, v.ID)
}

// ExportAttendance xuất điểm danh ra file xlsx.
func (s *Services) ExportAttendance(ctx context.Context, v *Viewer, date string) ([]byte, error) {
	records, err := s.ListAttendance(ctx, v, date)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Attendance"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	header := []interface{}{"Date", "Student", "Email", "Grade", "Attended"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, rec := range records {
		var name, email, grade interface{} = "", "", ""
		if rec.User != nil {
			email = rec.User.Email
			if rec.User.FullName != nil {
				name = *rec.User.FullName
			}
			if rec.User.Grade != nil {
				grade = *rec.User.Grade
			}
		}
		attended := "no"
		if rec.Attended {
			attended = "yes"
		}
		row := []interface{}{rec.EventDate.String(), name, email, grade, attended}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("encode xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
