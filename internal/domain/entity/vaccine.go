package entity

import "time"

// Vaccine is a catalog entry managed by admins.
type Vaccine struct {
	VaccineID   string     `bson:"vaccineId" json:"vaccine_id"`
	Name        string     `bson:"name" json:"name"`
	SideEffects string     `bson:"sideEffects,omitempty" json:"side_effects,omitempty"`
	RecordedBy  RecordedBy `bson:"recordedBy" json:"recorded_by"`
	CreatedAt   time.Time  `bson:"createdAt" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updated_at"`
}
