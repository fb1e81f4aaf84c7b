package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stratos-aero/stratos/internal/logging"
	"github.com/stratos-aero/stratos/internal/models"
)

var (
	flightNumberPattern = regexp.MustCompile(`^[A-Z]{2}[1-9][0-9]{0,3}$`)
	iataPattern         = regexp.MustCompile(`^[A-Z]{3}$`)
)

// takeoffAndLandingDelay pads estimated flight time, in minutes.
const takeoffAndLandingDelay = 20

type FlightService struct {
	DB       *gorm.DB
	Airports *AirportService
}

type FlightInput struct {
	FlightNumber     string    `json:"flightNumber"`
	DepartureAirport string    `json:"departureAirport"`
	ArrivalAirport   string    `json:"arrivalAirport"`
	DepartureTime    time.Time `json:"departureTime"`
	ArrivalTime      time.Time `json:"arrivalTime"`
	Aircraft         string    `json:"aircraft"`
}

func (s *FlightService) List(ctx context.Context) ([]models.Flight, error) {
	var flights []models.Flight
	if err := s.DB.WithContext(ctx).Preload("Aircraft").Order("departure_time ASC").Find(&flights).Error; err != nil {
		return nil, err
	}
	return flights, nil
}

func (s *FlightService) Get(ctx context.Context, id uuid.UUID) (*models.Flight, error) {
	var f models.Flight
	if err := s.DB.WithContext(ctx).Preload("Aircraft").First(&f, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Flight not found")
		}
		return nil, err
	}
	return &f, nil
}

func (s *FlightService) Create(ctx context.Context, in FlightInput) (*models.Flight, error) {
	var existing models.Flight
	err := s.DB.WithContext(ctx).Where("flight_number = ?", in.FlightNumber).First(&existing).Error
	if err == nil {
		return nil, &Error{Kind: KindFlightNumberExists, Message: "Flight number already exists"}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	aircraft, err := s.aircraftByRegistration(ctx, in.Aircraft)
	if err != nil {
		return nil, err
	}

	f := models.Flight{
		FlightNumber:     in.FlightNumber,
		DepartureAirport: in.DepartureAirport,
		ArrivalAirport:   in.ArrivalAirport,
		DepartureTime:    in.DepartureTime,
		ArrivalTime:      in.ArrivalTime,
		AircraftID:       aircraft.ID,
		Aircraft:         *aircraft,
	}
	if err := s.validateFlight(ctx, &f); err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Create(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *FlightService) Update(ctx context.Context, id uuid.UUID, in FlightInput) (*models.Flight, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	aircraft, err := s.aircraftByRegistration(ctx, in.Aircraft)
	if err != nil {
		return nil, err
	}
	f.FlightNumber = in.FlightNumber
	f.DepartureAirport = in.DepartureAirport
	f.ArrivalAirport = in.ArrivalAirport
	f.DepartureTime = in.DepartureTime
	f.ArrivalTime = in.ArrivalTime
	f.AircraftID = aircraft.ID
	f.Aircraft = *aircraft
	if err := s.validateFlight(ctx, f); err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Save(f).Error; err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FlightService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Delete(&models.Flight{}, "id = ?", id).Error
}

// EstimateArrival predicts the arrival time from airport distance and the
// aircraft type's cruising speed.
func (s *FlightService) EstimateArrival(ctx context.Context, departureAirport, arrivalAirport, aircraftRegistration string, departureTime time.Time) (time.Time, error) {
	distance, found, err := s.Airports.DistanceNM(ctx, departureAirport, arrivalAirport)
	if err != nil {
		return time.Time{}, err
	}
	if !found {
		return time.Time{}, notFound("Airport not found")
	}
	aircraft, err := s.aircraftByRegistration(ctx, aircraftRegistration)
	if err != nil {
		return time.Time{}, err
	}
	info, err := s.typeInfo(ctx, aircraft.Type)
	if err != nil {
		return time.Time{}, err
	}
	if info == nil || info.CruisingSpeedKnots <= 0 {
		return time.Time{}, illegalState("Aircraft type info not found")
	}
	flightMinutes := int(float64(distance)/float64(info.CruisingSpeedKnots)*60) + takeoffAndLandingDelay
	return departureTime.Add(time.Duration(flightMinutes) * time.Minute), nil
}

func (s *FlightService) aircraftByRegistration(ctx context.Context, registration string) (*models.Aircraft, error) {
	var a models.Aircraft
	if err := s.DB.WithContext(ctx).First(&a, "registration_number = ?", registration).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, illegalState("Aircraft not found")
		}
		return nil, err
	}
	return &a, nil
}

func (s *FlightService) typeInfo(ctx context.Context, aircraftType string) (*models.AircraftTypeInfo, error) {
	var info models.AircraftTypeInfo
	if err := s.DB.WithContext(ctx).First(&info, "aircraft_type = ?", aircraftType).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &info, nil
}

func (s *FlightService) validateFlight(ctx context.Context, f *models.Flight) error {
	if !flightNumberPattern.MatchString(f.FlightNumber) {
		return validation("Invalid flight number format")
	}
	if !iataPattern.MatchString(f.DepartureAirport) {
		return validation("Departure airport code not in IATA format")
	}
	if !iataPattern.MatchString(f.ArrivalAirport) {
		return validation("Arrival airport code not in IATA format")
	}
	if err := validateTimes(f.DepartureTime, f.ArrivalTime); err != nil {
		return err
	}
	if f.DepartureAirport == f.ArrivalAirport {
		return &Error{Kind: KindInvalidFlightEndpoints, Message: "Arrival and departure airports must be different"}
	}
	return s.validateAssignedAircraft(ctx, f)
}

func validateTimes(departure, arrival time.Time) error {
	if departure.After(arrival) {
		return &Error{Kind: KindInvalidTimeInterval, Message: "Departure time is after arrival time"}
	}
	now := time.Now()
	if departure.Before(now) || arrival.Before(now) {
		return &Error{Kind: KindInvalidTimeInterval, Message: "Departure time is before current time"}
	}
	return nil
}

func (s *FlightService) validateAssignedAircraft(ctx context.Context, f *models.Flight) error {
	var assigned models.Aircraft
	if dbErr := s.DB.WithContext(ctx).First(&assigned, "id = ?", f.AircraftID).Error; dbErr != nil {
		if errors.Is(dbErr, gorm.ErrRecordNotFound) {
			return illegalState("Aircraft not found")
		}
		return dbErr
	}
	if assigned.Status != models.AircraftOperational {
		return illegalState("Aircraft is not operational")
	}

	var overlapping int64
	if dbErr := s.DB.WithContext(ctx).Model(&models.Flight{}).
		Where("aircraft_id = ? AND id <> ? AND departure_time < ? AND arrival_time > ?",
			assigned.ID, f.ID, f.ArrivalTime, f.DepartureTime).
		Count(&overlapping).Error; dbErr != nil {
		return dbErr
	}
	if overlapping > 0 {
		return illegalState("Flight overlaps assigned aircraft's existing flight")
	}

	// Reachability: if the aircraft landed somewhere else within the last
	// 24 hours before departure, it cannot make this departure airport.
	var lastFlight models.Flight
	dbErr := s.DB.WithContext(ctx).
		Where("aircraft_id = ? AND id <> ? AND arrival_time <= ?", assigned.ID, f.ID, f.DepartureTime).
		Order("arrival_time DESC").
		First(&lastFlight).Error
	if dbErr != nil && !errors.Is(dbErr, gorm.ErrRecordNotFound) {
		return dbErr
	}
	if dbErr == nil {
		within24h := lastFlight.ArrivalTime.After(f.DepartureTime.Add(-24 * time.Hour))
		wrongAirport := lastFlight.ArrivalAirport != f.DepartureAirport
		if within24h && wrongAirport {
			return illegalState("Aircraft cannot reach departure airport")
		}
	}

	distance, found, dbErr := s.Airports.DistanceNM(ctx, f.DepartureAirport, f.ArrivalAirport)
	if dbErr != nil {
		return dbErr
	}
	if !found {
		// Airports outside the reference table skip the range check.
		logging.FromContext(ctx).Debug("airport not in reference data, skipping range check",
			"departure", f.DepartureAirport, "arrival", f.ArrivalAirport)
		return nil
	}
	info, dbErr := s.typeInfo(ctx, assigned.Type)
	if dbErr != nil {
		return dbErr
	}
	if info == nil {
		return illegalState("Aircraft type info not found")
	}
	if distance > info.CruisingDistanceMiles {
		return illegalState("Aircraft doesn't have enough range to complete flight")
	}
	return nil
}
