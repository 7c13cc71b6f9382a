package status

import "github.com/casablancax/travel-ai-platform/internal/customer"

// BookingState reports whether travel has been booked.
type BookingState string

const (
	BookingNotBooked BookingState = "not_booked"
	BookingBooked    BookingState = "booked"
)

// BookingResult carries the state and whichever references exist.
type BookingResult struct {
	State     BookingState `json:"state"`
	FlightRef string       `json:"flight_ref,omitempty"`
	HotelRef  string       `json:"hotel_ref,omitempty"`
}

// EvaluateBooking classifies the customer as booked when either the
// flight or hotel reference is set.
func EvaluateBooking(flightRef, hotelRef string) BookingResult {
	result := BookingResult{State: BookingNotBooked}
	if !customer.IsBlank(flightRef) {
		result.FlightRef = flightRef
		result.State = BookingBooked
	}
	if !customer.IsBlank(hotelRef) {
		result.HotelRef = hotelRef
		result.State = BookingBooked
	}
	return result
}
