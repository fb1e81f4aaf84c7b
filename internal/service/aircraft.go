package service

import (
	"context"
	"errors"
	"regexp"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stratos-aero/stratos/internal/models"
)

var registrationPattern = regexp.MustCompile(`^[A-Z0-9]{1,2}-[A-Z]{3,4}$`)

type AircraftService struct {
	DB *gorm.DB
}

type AircraftInput struct {
	RegistrationNumber string                `json:"registrationNumber"`
	Type               string                `json:"type"`
	Status             models.AircraftStatus `json:"status"`
}

func (s *AircraftService) List(ctx context.Context) ([]models.Aircraft, error) {
	var aircraft []models.Aircraft
	if err := s.DB.WithContext(ctx).Order("registration_number ASC").Find(&aircraft).Error; err != nil {
		return nil, err
	}
	return aircraft, nil
}

func (s *AircraftService) Get(ctx context.Context, id uuid.UUID) (*models.Aircraft, error) {
	var a models.Aircraft
	if err := s.DB.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Aircraft not found")
		}
		return nil, err
	}
	return &a, nil
}

func (s *AircraftService) GetByRegistration(ctx context.Context, registration string) (*models.Aircraft, error) {
	var a models.Aircraft
	if err := s.DB.WithContext(ctx).First(&a, "registration_number = ?", registration).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Aircraft not found")
		}
		return nil, err
	}
	return &a, nil
}

func (s *AircraftService) Create(ctx context.Context, in AircraftInput) (*models.Aircraft, error) {
	if !registrationPattern.MatchString(in.RegistrationNumber) {
		return nil, validation("Invalid aircraft registration number format")
	}
	var existing models.Aircraft
	err := s.DB.WithContext(ctx).Where("registration_number = ?", in.RegistrationNumber).First(&existing).Error
	if err == nil {
		return nil, &Error{Kind: KindRegistrationExists, Message: "Aircraft registration number already exists"}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	a := models.Aircraft{
		RegistrationNumber: in.RegistrationNumber,
		Type:               in.Type,
		Status:             in.Status,
	}
	if err := s.DB.WithContext(ctx).Create(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *AircraftService) Update(ctx context.Context, id uuid.UUID, in AircraftInput) (*models.Aircraft, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !registrationPattern.MatchString(in.RegistrationNumber) {
		return nil, validation("Invalid aircraft registration number format")
	}
	a.RegistrationNumber = in.RegistrationNumber
	a.Type = in.Type
	a.Status = in.Status
	if err := s.DB.WithContext(ctx).Save(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AircraftService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Delete(&models.Aircraft{}, "id = ?", id).Error
}
