package model

// Seat is one bookable unit of an event's capacity.
type Seat struct {
	SeatNo   int  `json:"seatNo"`
	IsBooked bool `json:"isBooked"`
}
