package models

import (
	"time"

	"github.com/google/uuid"
)

// GearCategory groups listings for pricing comparisons
type GearCategory string

const (
	CategoryCamera      GearCategory = "camera"
	CategoryCamping     GearCategory = "camping"
	CategoryCycling     GearCategory = "cycling"
	CategoryWaterSports GearCategory = "water_sports"
	CategoryWinter      GearCategory = "winter_sports"
	CategoryClimbing    GearCategory = "climbing"
	CategoryTools       GearCategory = "tools"
	CategoryAudio       GearCategory = "audio"
	CategoryDrone       GearCategory = "drone"
	CategoryOther       GearCategory = "other"
)

// Listing is a piece of gear offered for rent
type Listing struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	OwnerID     uuid.UUID    `json:"owner_id" db:"owner_id"`
	Title       string       `json:"title" db:"title"`
	Description string       `json:"description" db:"description"`
	Category    GearCategory `json:"category" db:"category"`
	DailyRate   float64      `json:"daily_rate" db:"daily_rate"`
	Images      []string     `json:"images" db:"images"`
	City        string       `json:"city" db:"city"`
	State       string       `json:"state" db:"state"`
	Country     string       `json:"country" db:"country"`
	Latitude    *float64     `json:"latitude,omitempty" db:"latitude"`
	Longitude   *float64     `json:"longitude,omitempty" db:"longitude"`
	IsActive    bool         `json:"is_active" db:"is_active"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}
