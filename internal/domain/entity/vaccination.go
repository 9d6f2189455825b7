package entity

import "time"

// VaccinationRecord is one administered dose.
type VaccinationRecord struct {
	VaccinationID       string     `bson:"vaccinationId" json:"vaccination_id"`
	CitizenID           string     `bson:"citizenId" json:"citizen_id"`
	VaccineID           string     `bson:"vaccineId" json:"vaccine_id"`
	BatchNumber         string     `bson:"batchNumber" json:"batch_number"`
	ExpiryDate          time.Time  `bson:"expiryDate" json:"expiry_date"`
	VaccinationLocation string     `bson:"vaccinationLocation" json:"vaccination_location"`
	Division            string     `bson:"division" json:"division"`
	AdditionalNotes     string     `bson:"additionalNotes,omitempty" json:"additional_notes,omitempty"`
	RecordedBy          RecordedBy `bson:"recordedBy" json:"recorded_by"`
	CreatedAt           time.Time  `bson:"createdAt" json:"created_at"`
	UpdatedAt           time.Time  `bson:"updatedAt" json:"updated_at"`
}
