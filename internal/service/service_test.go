package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/stratos-aero/stratos/internal/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Aircraft{},
		&models.Flight{},
		&models.MaintenanceRecord{},
		&models.MaintenanceLogEntry{},
		&models.Airport{},
		&models.AircraftTypeInfo{},
	))
	return db
}

func seedAircraft(t *testing.T, db *gorm.DB, registration string, status models.AircraftStatus) *models.Aircraft {
	t.Helper()
	a := &models.Aircraft{RegistrationNumber: registration, Type: "A320", Status: status}
	require.NoError(t, db.Create(a).Error)
	return a
}

func seedEngineer(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, PasswordHash: "x", Role: models.RoleEngineer}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedAirport(t *testing.T, db *gorm.DB, iata string, lat, lon float64) {
	t.Helper()
	require.NoError(t, db.Create(&models.Airport{
		Name:         iata + " Airport",
		IATACode:     iata,
		LatitudeDeg:  lat,
		LongitudeDeg: lon,
	}).Error)
}

func seedTypeInfo(t *testing.T, db *gorm.DB, aircraftType string, speedKnots, rangeMiles int) {
	t.Helper()
	require.NoError(t, db.Create(&models.AircraftTypeInfo{
		AircraftType:          aircraftType,
		CruisingSpeedKnots:    speedKnots,
		CruisingDistanceMiles: rangeMiles,
	}).Error)
}

func requireKind(t *testing.T, err error, kind string) {
	t.Helper()
	require.Error(t, err)
	serr, ok := err.(*Error)
	require.True(t, ok, "expected *service.Error, got %T: %v", err, err)
	require.Equal(t, kind, serr.Kind)
}

var ctx = context.Background()

func newUUID(t *testing.T) uuid.UUID {
	t.Helper()
	return uuid.New()
}

func hoursFromNow(h int) time.Time {
	return time.Now().Add(time.Duration(h) * time.Hour).Truncate(time.Second)
}
