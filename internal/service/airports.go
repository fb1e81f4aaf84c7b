package service

import (
	"context"
	"errors"
	"math"

	"gorm.io/gorm"

	"github.com/stratos-aero/stratos/internal/models"
)

type AirportService struct {
	DB *gorm.DB
}

func (s *AirportService) IATACodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := s.DB.WithContext(ctx).Model(&models.Airport{}).Order("iata_code ASC").Pluck("iata_code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

func (s *AirportService) Add(ctx context.Context, airport *models.Airport) error {
	return s.DB.WithContext(ctx).Create(airport).Error
}

// DistanceNM returns the great-circle distance between two airports in
// nautical miles. The second return is false when either airport is not in
// the database; callers decide whether that skips or fails their check.
func (s *AirportService) DistanceNM(ctx context.Context, originIATA, destinationIATA string) (int, bool, error) {
	origin, err := s.byIATA(ctx, originIATA)
	if err != nil {
		return 0, false, err
	}
	destination, err := s.byIATA(ctx, destinationIATA)
	if err != nil {
		return 0, false, err
	}
	if origin == nil || destination == nil {
		return 0, false, nil
	}
	return haversineNM(origin, destination), true, nil
}

func (s *AirportService) byIATA(ctx context.Context, iata string) (*models.Airport, error) {
	var a models.Airport
	if err := s.DB.WithContext(ctx).First(&a, "iata_code = ?", iata).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// earth radius in km; the 1.8 divisor converts km to nautical miles.
const (
	earthRadiusKM     = 6371
	kmToNauticalMiles = 1.8
)

func haversineNM(origin, destination *models.Airport) int {
	latRad1 := origin.LatitudeDeg * math.Pi / 180
	latRad2 := destination.LatitudeDeg * math.Pi / 180
	deltaLat := latRad2 - latRad1
	deltaLon := (destination.LongitudeDeg - origin.LongitudeDeg) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(latRad1)*math.Cos(latRad2)*math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return int(math.Round(earthRadiusKM * c / kmToNauticalMiles))
}
