package entity

import (
	"github.com/uptrace/bun"
)

// Location is a venue where workers clock in. Radius is the maximum allowed
// distance in meters between the reported position and (Latitude, Longitude)
// for the venue to count as "present here". Radius must be > 0.
type Location struct {
	bun.BaseModel `bun:"table:locations"`

	BasicEntity
	Name      *string `json:"name"      bun:"name"`
	Address   *string `json:"address"   bun:"address"`
	City      *string `json:"city"      bun:"city"`
	Latitude  float64 `json:"latitude"  bun:"latitude"`
	Longitude float64 `json:"longitude" bun:"longitude"`
	Radius    float64 `json:"radius"    bun:"radius"`
}
