package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleEngineer UserRole = "ENGINEER"
	RolePilot    UserRole = "PILOT"
)

func AllUserRoles() []UserRole {
	return []UserRole{RoleAdmin, RoleEngineer, RolePilot}
}

type AircraftStatus string

const (
	AircraftOperational      AircraftStatus = "OPERATIONAL"
	AircraftUnderMaintenance AircraftStatus = "UNDER_MAINTENANCE"
	AircraftRetired          AircraftStatus = "RETIRED"
)

type MaintenanceType string

const (
	MaintenanceRoutine    MaintenanceType = "ROUTINE"
	MaintenanceRepair     MaintenanceType = "REPAIR"
	MaintenanceInspection MaintenanceType = "INSPECTION"
	MaintenanceOverhaul   MaintenanceType = "OVERHAUL"
)

func AllMaintenanceTypes() []MaintenanceType {
	return []MaintenanceType{MaintenanceRoutine, MaintenanceRepair, MaintenanceInspection, MaintenanceOverhaul}
}

type MaintenanceStatus string

const (
	MaintenancePlanned    MaintenanceStatus = "PLANNED"
	MaintenanceInProgress MaintenanceStatus = "IN_PROGRESS"
	MaintenanceCompleted  MaintenanceStatus = "COMPLETED"
)

func AllMaintenanceStatuses() []MaintenanceStatus {
	return []MaintenanceStatus{MaintenancePlanned, MaintenanceInProgress, MaintenanceCompleted}
}

type LogAction string

const (
	LogCreated LogAction = "CREATED"
	LogUpdated LogAction = "UPDATED"
	LogDeleted LogAction = "DELETED"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	Username     string    `gorm:"unique;not null"          json:"username"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         UserRole  `gorm:"not null"                 json:"role"`
	OTPSecret    string    `gorm:"column:otp_secret"        json:"-"`
	OTPEnabled   bool      `gorm:"column:otp_enabled"       json:"isOtpEnabled"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type Aircraft struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RegistrationNumber string         `gorm:"unique;not null"      json:"registrationNumber"`
	Type               string         `gorm:"not null"             json:"type"`
	Status             AircraftStatus `gorm:"not null"             json:"status"`
}

func (a *Aircraft) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type Flight struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FlightNumber     string    `gorm:"unique;not null"      json:"flightNumber"`
	DepartureAirport string    `gorm:"not null"             json:"departureAirport"`
	ArrivalAirport   string    `gorm:"not null"             json:"arrivalAirport"`
	DepartureTime    time.Time `gorm:"not null"             json:"departureTime"`
	ArrivalTime      time.Time `gorm:"not null"             json:"arrivalTime"`
	AircraftID       uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Aircraft         Aircraft  `gorm:"constraint:OnDelete:CASCADE" json:"aircraft"`
}

func (f *Flight) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

type MaintenanceRecord struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey"     json:"id"`
	AircraftID uuid.UUID         `gorm:"type:uuid;not null;index" json:"-"`
	Aircraft   Aircraft          `gorm:"constraint:OnDelete:CASCADE" json:"aircraft"`
	EngineerID uuid.UUID         `gorm:"type:uuid;not null;index" json:"-"`
	Engineer   User              `gorm:"constraint:OnDelete:CASCADE" json:"engineer"`
	Type       MaintenanceType   `gorm:"not null"                 json:"type"`
	Status     MaintenanceStatus `gorm:"not null"                 json:"status"`
	StartDate  time.Time         `gorm:"not null"                 json:"startDate"`
	EndDate    time.Time         `gorm:"not null"                 json:"endDate"`
}

func (m *MaintenanceRecord) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// MaintenanceLogEntry is the audit trail of maintenance record mutations.
// Changes holds a human-readable diff for updates, empty otherwise.
type MaintenanceLogEntry struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Action              LogAction `gorm:"not null"             json:"action"`
	MaintenanceRecordID uuid.UUID `gorm:"type:uuid;not null"   json:"maintenanceRecordId"`
	AircraftRegistration string   `gorm:"not null"             json:"aircraftRegistrationNumber"`
	PerformedBy         string    `gorm:"not null"             json:"performedBy"`
	Timestamp           time.Time `gorm:"not null"             json:"timestamp"`
	Changes             string    `json:"changes"`
}

func (e *MaintenanceLogEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (e MaintenanceLogEntry) String() string {
	s := e.Timestamp.Format("2006-01-02 15:04:05") + " -- [" + string(e.Action) + "] By " + e.PerformedBy + " on aircraft " + e.AircraftRegistration
	if e.Changes != "" {
		s += " | Changes: " + e.Changes
	}
	return s
}

type Airport struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `json:"name"`
	IATACode     string    `gorm:"unique;not null"      json:"iataCode"`
	ICAOCode     string    `json:"icaoCode"`
	LatitudeDeg  float64   `json:"latitudeDeg"`
	LongitudeDeg float64   `json:"longitudeDeg"`
	Municipality string    `json:"municipality"`
	ISOCountry   string    `json:"isoCountry"`
}

func (a *Airport) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AircraftTypeInfo gives per-type cruising performance used for range and
// arrival-time checks.
type AircraftTypeInfo struct {
	AircraftType          string `gorm:"primaryKey" json:"aircraftType"`
	CruisingSpeedKnots    int    `gorm:"not null"   json:"cruisingSpeedKnots"`
	CruisingDistanceMiles int    `gorm:"not null"   json:"cruisingDistanceMiles"`
}
