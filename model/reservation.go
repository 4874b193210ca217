// model/reservation.go
package model

import "time"

type Reservation struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	PrintedBookID   int64     `json:"printed_book_id"`
	ReservationDate time.Time `json:"reservation_date"`
	IsActive        bool      `json:"is_active"`
	Notified        bool      `json:"notified"`
}
