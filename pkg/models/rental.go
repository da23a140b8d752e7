package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// RentalStatus represents the lifecycle state of a rental
type RentalStatus string

const (
	RentalStatusPending   RentalStatus = "pending"
	RentalStatusConfirmed RentalStatus = "confirmed"
	RentalStatusActive    RentalStatus = "active"
	RentalStatusCompleted RentalStatus = "completed"
	RentalStatusCancelled RentalStatus = "cancelled"
	RentalStatusDisputed  RentalStatus = "disputed"
)

// Rental is a booking of a listing by a renter. The owner is the provider side.
type Rental struct {
	ID        uuid.UUID    `json:"id" db:"id"`
	ListingID uuid.UUID    `json:"listing_id" db:"listing_id"`
	RenterID  uuid.UUID    `json:"renter_id" db:"renter_id"`
	OwnerID   uuid.UUID    `json:"owner_id" db:"owner_id"`
	Status    RentalStatus `json:"status" db:"status"`
	StartDate time.Time    `json:"start_date" db:"start_date"`
	EndDate   time.Time    `json:"end_date" db:"end_date"`
	DailyRate float64      `json:"daily_rate" db:"daily_rate"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}

// Succeeded reports whether the rental reached its terminal success state
func (r *Rental) Succeeded() bool {
	return r.Status == RentalStatusCompleted
}

// DurationDays is the number of billed days, rounded up, at least one
func (r *Rental) DurationDays() int {
	days := int(math.Ceil(r.EndDate.Sub(r.StartDate).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

// Value is the rental's total price: billed days times daily rate
func (r *Rental) Value() float64 {
	return float64(r.DurationDays()) * r.DailyRate
}

// Involves reports whether userID is either the renter or the owner
func (r *Rental) Involves(userID uuid.UUID) bool {
	return r.RenterID == userID || r.OwnerID == userID
}
