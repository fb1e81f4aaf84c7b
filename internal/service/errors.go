package service

// Error is a domain failure with a machine-readable kind and a message that
// forms display verbatim.
type Error struct {
	Kind    string
	Message string
}

func (e *Error) Error() string { return e.Message }

const (
	KindNotFound               = "NotFound"
	KindUsernameExists         = "UsernameAlreadyExists"
	KindRegistrationExists     = "AircraftRegistrationNumberAlreadyExists"
	KindFlightNumberExists     = "FlightNumberAlreadyExists"
	KindInvalidTimeInterval    = "InvalidTimeInterval"
	KindInvalidFlightEndpoints = "InvalidFlightEndpoints"
	KindValidation             = "Validation"
	KindIllegalState           = "IllegalState"
)

func notFound(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }
func illegalState(msg string) *Error { return &Error{Kind: KindIllegalState, Message: msg} }
func validation(msg string) *Error   { return &Error{Kind: KindValidation, Message: msg} }
