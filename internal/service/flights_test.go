package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/stratos-aero/stratos/internal/models"
)

func flightServices(t *testing.T) (*FlightService, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	airports := &AirportService{DB: db}
	return &FlightService{DB: db, Airports: airports}, db
}

func validInput(registration string) FlightInput {
	return FlightInput{
		FlightNumber:     "SK101",
		DepartureAirport: "OSL",
		ArrivalAirport:   "CPH",
		DepartureTime:    hoursFromNow(2),
		ArrivalTime:      hoursFromNow(4),
		Aircraft:         registration,
	}
}

func TestFlightCreate(t *testing.T) {
	svc, db := flightServices(t)
	seedAircraft(t, db, "LN-ABC", models.AircraftOperational)

	f, err := svc.Create(ctx, validInput("LN-ABC"))
	require.NoError(t, err)
	require.Equal(t, "SK101", f.FlightNumber)
	require.Equal(t, "LN-ABC", f.Aircraft.RegistrationNumber)

	got, err := svc.Get(ctx, f.ID)
	require.NoError(t, err)
	require.Equal(t, "OSL", got.DepartureAirport)
}

func TestFlightCreateRejectsDuplicateNumber(t *testing.T) {
	svc, db := flightServices(t)
	seedAircraft(t, db, "LN-ABC", models.AircraftOperational)

	_, err := svc.Create(ctx, validInput("LN-ABC"))
	require.NoError(t, err)

	in := validInput("LN-ABC")
	in.DepartureTime = hoursFromNow(10)
	in.ArrivalTime = hoursFromNow(12)
	_, err = svc.Create(ctx, in)
	requireKind(t, err, KindFlightNumberExists)
}

func TestFlightCreateValidationFailures(t *testing.T) {
	svc, db := flightServices(t)
	seedAircraft(t, db, "LN-ABC", models.AircraftOperational)

	cases := []struct {
		name   string
		mutate func(*FlightInput)
		kind   string
	}{
		{
			name:   "bad flight number",
			mutate: func(in *FlightInput) { in.FlightNumber = "1234" },
			kind:   KindValidation,
		},
		{
			name:   "flight number with leading zero",
			mutate: func(in *FlightInput) { in.FlightNumber = "SK0101" },
			kind:   KindValidation,
		},
		{
			name:   "bad departure airport code",
			mutate: func(in *FlightInput) { in.DepartureAirport = "Oslo" },
			kind:   KindValidation,
		},
		{
			name:   "bad arrival airport code",
			mutate: func(in *FlightInput) { in.ArrivalAirport = "cp" },
			kind:   KindValidation,
		},
		{
			name: "departure after arrival",
			mutate: func(in *FlightInput) {
				in.DepartureTime = hoursFromNow(4)
				in.ArrivalTime = hoursFromNow(2)
			},
			kind: KindInvalidTimeInterval,
		},
		{
			name: "departure in the past",
			mutate: func(in *FlightInput) {
				in.DepartureTime = hoursFromNow(-2)
				in.ArrivalTime = hoursFromNow(2)
			},
			kind: KindInvalidTimeInterval,
		},
		{
			name: "same departure and arrival airport",
			mutate: func(in *FlightInput) {
				in.ArrivalAirport = in.DepartureAirport
			},
			kind: KindInvalidFlightEndpoints,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput("LN-ABC")
			tc.mutate(&in)
			_, err := svc.Create(ctx, in)
			requireKind(t, err, tc.kind)
		})
	}
}

func TestFlightCreateRejectsNonOperationalAircraft(t *testing.T) {
	svc, db := flightServices(t)
	seedAircraft(t, db, "LN-DEF", models.AircraftUnderMaintenance)

	_, err := svc.Create(ctx, validInput("LN-DEF"))
	requireKind(t, err, KindIllegalState)
	require.EqualError(t, err, "Aircraft is not operational")
}

func TestFlightCreateRejectsUnknownAircraft(t *testing.T) {
	svc, _ := flightServices(t)

	_, err := svc.Create(ctx, validInput("LN-XYZ"))
	requireKind(t, err, KindIllegalState)
}

func TestFlightCreateRejectsOverlap(t *testing.T) {
	svc, db := flightServices(t)
	seedAircraft(t, db, "LN-ABC", models.AircraftOperational)

	_, err := svc.Create(ctx, validInput("LN-ABC"))
	require.NoError(t, err)

	in := validInput("LN-ABC")
	in.FlightNumber = "SK102"
	in.DepartureTime = hoursFromNow(3)
	in.ArrivalTime = hoursFromNow(5)
	in.DepartureAirport = "CPH"
	in.ArrivalAirport = "ARN"
	_, err = svc.Create(ctx, in)
	requireKind(t, err, KindIllegalState)
	require.EqualError(t, err, "Flight overlaps assigned aircraft's existing flight")
}

func TestFlightCreateRejectsUnreachableDeparture(t *testing.T) {
	svc, db := flightServices(t)
	seedAircraft(t, db, "LN-ABC", models.AircraftOperational)

	// Aircraft lands at CPH two hours from now.
	_, err := svc.Create(ctx, validInput("LN-ABC"))
	require.NoError(t, err)

	// Next departure, six hours later, leaves from ARN where the aircraft
	// never went.
	in := validInput("LN-ABC")
	in.FlightNumber = "SK102"
	in.DepartureAirport = "ARN"
	in.ArrivalAirport = "OSL"
	in.DepartureTime = hoursFromNow(10)
	in.ArrivalTime = hoursFromNow(12)
	_, err = svc.Create(ctx, in)
	requireKind(t, err, KindIllegalState)
	require.EqualError(t, err, "Aircraft cannot reach departure airport")
}

func TestFlightCreateAllowsContinuationFromArrivalAirport(t *testing.T) {
	svc, db := flightServices(t)
	seedAircraft(t, db, "LN-ABC", models.AircraftOperational)

	_, err := svc.Create(ctx, validInput("LN-ABC"))
	require.NoError(t, err)

	in := validInput("LN-ABC")
	in.FlightNumber = "SK102"
	in.DepartureAirport = "CPH"
	in.ArrivalAirport = "ARN"
	in.DepartureTime = hoursFromNow(10)
	in.ArrivalTime = hoursFromNow(12)
	_, err = svc.Create(ctx, in)
	require.NoError(t, err)
}

func TestFlightCreateRangeCheck(t *testing.T) {
	svc, db := flightServices(t)
	seedAircraft(t, db, "LN-ABC", models.AircraftOperational)
	// Oslo to Sydney, far beyond an A320's range.
	seedAirport(t, db, "OSL", 60.19, 11.10)
	seedAirport(t, db, "SYD", -33.95, 151.18)
	seedAirport(t, db, "CPH", 55.62, 12.65)
	seedTypeInfo(t, db, "A320", 450, 3300)

	in := validInput("LN-ABC")
	in.ArrivalAirport = "SYD"
	_, err := svc.Create(ctx, in)
	requireKind(t, err, KindIllegalState)
	require.EqualError(t, err, "Aircraft doesn't have enough range to complete flight")

	// Oslo to Copenhagen is well within range.
	_, err = svc.Create(ctx, validInput("LN-ABC"))
	require.NoError(t, err)
}

func TestFlightCreateSkipsRangeCheckForUnknownAirports(t *testing.T) {
	svc, db := flightServices(t)
	seedAircraft(t, db, "LN-ABC", models.AircraftOperational)
	// No airports seeded, so the reference data lookup comes back empty and
	// the range check is skipped rather than failing the flight.
	_, err := svc.Create(ctx, validInput("LN-ABC"))
	require.NoError(t, err)
}

func TestFlightUpdateDoesNotOverlapItself(t *testing.T) {
	svc, db := flightServices(t)
	seedAircraft(t, db, "LN-ABC", models.AircraftOperational)

	f, err := svc.Create(ctx, validInput("LN-ABC"))
	require.NoError(t, err)

	in := validInput("LN-ABC")
	in.ArrivalTime = hoursFromNow(5)
	updated, err := svc.Update(ctx, f.ID, in)
	require.NoError(t, err)
	require.Equal(t, f.ID, updated.ID)
}

func TestFlightGetNotFound(t *testing.T) {
	svc, _ := flightServices(t)

	_, err := svc.Get(ctx, newUUID(t))
	requireKind(t, err, KindNotFound)
}

func TestFlightDelete(t *testing.T) {
	svc, db := flightServices(t)
	seedAircraft(t, db, "LN-ABC", models.AircraftOperational)

	f, err := svc.Create(ctx, validInput("LN-ABC"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, f.ID))
	_, err = svc.Get(ctx, f.ID)
	requireKind(t, err, KindNotFound)
}

func TestEstimateArrival(t *testing.T) {
	svc, db := flightServices(t)
	seedAircraft(t, db, "LN-ABC", models.AircraftOperational)
	seedAirport(t, db, "OSL", 60.19, 11.10)
	seedAirport(t, db, "CPH", 55.62, 12.65)
	seedTypeInfo(t, db, "A320", 450, 3300)

	departure := hoursFromNow(2)
	arrival, err := svc.EstimateArrival(ctx, "OSL", "CPH", "LN-ABC", departure)
	require.NoError(t, err)
	require.True(t, arrival.After(departure.Add(20*time.Minute)),
		"estimate must include the takeoff and landing pad")
	require.True(t, arrival.Before(departure.Add(3*time.Hour)),
		"a short hop should not take three hours")
}

func TestEstimateArrivalUnknownAirport(t *testing.T) {
	svc, db := flightServices(t)
	seedAircraft(t, db, "LN-ABC", models.AircraftOperational)

	_, err := svc.EstimateArrival(ctx, "OSL", "CPH", "LN-ABC", hoursFromNow(2))
	requireKind(t, err, KindNotFound)
}
