package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stratos-aero/stratos/internal/logging"
	"github.com/stratos-aero/stratos/internal/models"
	"github.com/stratos-aero/stratos/internal/search"
)

type MaintenanceService struct {
	DB *gorm.DB
	// ES is optional; when nil the audit trail is only kept in the database.
	ES *elasticsearch.Client
}

type MaintenanceFilter struct {
	Status     models.MaintenanceStatus
	Type       models.MaintenanceType
	EngineerID uuid.UUID
	AircraftID uuid.UUID
	SortBy     string
	Order      string
}

type MaintenanceInput struct {
	Aircraft  string                   `json:"aircraft"`
	Engineer  uuid.UUID                `json:"engineer"`
	Type      models.MaintenanceType   `json:"type"`
	Status    models.MaintenanceStatus `json:"status"`
	StartDate time.Time                `json:"startDate"`
	EndDate   time.Time                `json:"endDate"`
}

var maintenanceSortColumns = map[string]string{
	"startDate": "start_date",
	"endDate":   "end_date",
	"type":      "type",
	"status":    "status",
}

func (s *MaintenanceService) List(ctx context.Context, f MaintenanceFilter) ([]models.MaintenanceRecord, error) {
	q := s.DB.WithContext(ctx).Model(&models.MaintenanceRecord{}).
		Preload("Aircraft").Preload("Engineer")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.EngineerID != uuid.Nil {
		q = q.Where("engineer_id = ?", f.EngineerID)
	}
	if f.AircraftID != uuid.Nil {
		q = q.Where("aircraft_id = ?", f.AircraftID)
	}
	col, ok := maintenanceSortColumns[f.SortBy]
	if !ok {
		col = "start_date"
	}
	order := "ASC"
	if strings.EqualFold(f.Order, "desc") {
		order = "DESC"
	}
	var records []models.MaintenanceRecord
	if err := q.Order(col + " " + order).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *MaintenanceService) Get(ctx context.Context, id uuid.UUID) (*models.MaintenanceRecord, error) {
	var r models.MaintenanceRecord
	if err := s.DB.WithContext(ctx).Preload("Aircraft").Preload("Engineer").First(&r, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Maintenance record not found")
		}
		return nil, err
	}
	return &r, nil
}

func (s *MaintenanceService) Create(ctx context.Context, in MaintenanceInput) (*models.MaintenanceRecord, error) {
	record, err := s.resolve(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.validateRecord(ctx, record); err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	s.logAction(ctx, models.LogCreated, record, "")
	return record, nil
}

func (s *MaintenanceService) Update(ctx context.Context, id uuid.UUID, in MaintenanceInput) (*models.MaintenanceRecord, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	original := *existing

	updated, err := s.resolve(ctx, in)
	if err != nil {
		return nil, err
	}
	existing.AircraftID = updated.AircraftID
	existing.Aircraft = updated.Aircraft
	existing.EngineerID = updated.EngineerID
	existing.Engineer = updated.Engineer
	existing.Type = in.Type
	existing.Status = in.Status
	existing.StartDate = in.StartDate
	existing.EndDate = in.EndDate
	if err := s.validateRecord(ctx, existing); err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Save(existing).Error; err != nil {
		return nil, err
	}
	s.logAction(ctx, models.LogUpdated, existing, diffRecords(&original, existing))
	return existing, nil
}

func (s *MaintenanceService) Delete(ctx context.Context, id uuid.UUID) error {
	record, err := s.Get(ctx, id)
	if err != nil {
		var serr *Error
		if errors.As(err, &serr) && serr.Kind == KindNotFound {
			return nil
		}
		return err
	}
	s.logAction(ctx, models.LogDeleted, record, "")
	return s.DB.WithContext(ctx).Delete(&models.MaintenanceRecord{}, "id = ?", id).Error
}

// LogEntries lists the audit trail, newest first.
func (s *MaintenanceService) LogEntries(ctx context.Context) ([]models.MaintenanceLogEntry, error) {
	var entries []models.MaintenanceLogEntry
	if err := s.DB.WithContext(ctx).Order("timestamp DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *MaintenanceService) resolve(ctx context.Context, in MaintenanceInput) (*models.MaintenanceRecord, error) {
	var aircraft models.Aircraft
	if err := s.DB.WithContext(ctx).First(&aircraft, "registration_number = ?", in.Aircraft).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, illegalState("Aircraft not found")
		}
		return nil, err
	}
	var engineer models.User
	if err := s.DB.WithContext(ctx).First(&engineer, "id = ?", in.Engineer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, illegalState("User not found")
		}
		return nil, err
	}
	return &models.MaintenanceRecord{
		AircraftID: aircraft.ID,
		Aircraft:   aircraft,
		EngineerID: engineer.ID,
		Engineer:   engineer,
		Type:       in.Type,
		Status:     in.Status,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
	}, nil
}

func (s *MaintenanceService) validateRecord(ctx context.Context, r *models.MaintenanceRecord) error {
	if r.StartDate.After(r.EndDate) {
		return &Error{Kind: KindInvalidTimeInterval, Message: "Start date after end date"}
	}
	var overlapping int64
	if err := s.DB.WithContext(ctx).Model(&models.MaintenanceRecord{}).
		Where("aircraft_id = ? AND id <> ? AND start_date < ? AND end_date > ?",
			r.AircraftID, r.ID, r.EndDate, r.StartDate).
		Count(&overlapping).Error; err != nil {
		return err
	}
	if overlapping > 0 {
		return illegalState("Overlaps existing maintenance")
	}
	return nil
}

// logAction writes the audit entry; failures are logged, never fatal to the
// mutation that triggered them.
func (s *MaintenanceService) logAction(ctx context.Context, action models.LogAction, r *models.MaintenanceRecord, changes string) {
	entry := models.MaintenanceLogEntry{
		Action:               action,
		MaintenanceRecordID:  r.ID,
		AircraftRegistration: r.Aircraft.RegistrationNumber,
		PerformedBy:          r.Engineer.Username,
		Timestamp:            time.Now(),
		Changes:              changes,
	}
	if err := s.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		logging.FromContext(ctx).Error("maintenance log write failed", "error", err)
		return
	}
	if s.ES != nil {
		if err := search.IndexLogEntry(ctx, s.ES, &entry); err != nil {
			logging.FromContext(ctx).Error("maintenance log index failed", "error", err)
		}
	}
}

func diffRecords(oldRecord, newRecord *models.MaintenanceRecord) string {
	var changes strings.Builder

	if oldRecord.Aircraft.RegistrationNumber != newRecord.Aircraft.RegistrationNumber {
		fmt.Fprintf(&changes, "Aircraft changed from '%s' to '%s'. ",
			oldRecord.Aircraft.RegistrationNumber, newRecord.Aircraft.RegistrationNumber)
	}
	if oldRecord.Type != newRecord.Type {
		fmt.Fprintf(&changes, "Type changed from '%s' to '%s'. ", oldRecord.Type, newRecord.Type)
	}
	if !oldRecord.StartDate.Equal(newRecord.StartDate) {
		fmt.Fprintf(&changes, "Start date changed from '%s' to '%s'. ",
			oldRecord.StartDate.Format(time.RFC3339), newRecord.StartDate.Format(time.RFC3339))
	}
	if !oldRecord.EndDate.Equal(newRecord.EndDate) {
		fmt.Fprintf(&changes, "End date changed from '%s' to '%s'. ",
			oldRecord.EndDate.Format(time.RFC3339), newRecord.EndDate.Format(time.RFC3339))
	}
	if oldRecord.Status != newRecord.Status {
		fmt.Fprintf(&changes, "Status changed from '%s' to '%s'. ", oldRecord.Status, newRecord.Status)
	}

	return strings.TrimSpace(changes.String())
}
