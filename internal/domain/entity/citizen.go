package entity

import "time"

// EmergencyContact is embedded in a citizen record.
type EmergencyContact struct {
	Name        string `bson:"name,omitempty" json:"name,omitempty"`
	PhoneNumber string `bson:"phoneNumber,omitempty" json:"phone_number,omitempty"`
}

// Citizen is the patient-facing account. Passwords are bcrypt hashes.
// PendingEmail/PendingPhone are written only by the contact-change protocol
// and are never serialized to API responses.
type Citizen struct {
	CitizenID    string    `bson:"citizenId" json:"citizen_id"`
	SerialNumber string    `bson:"serialNumber" json:"serial_number"`
	FirstName    string    `bson:"firstName" json:"first_name"`
	LastName     string    `bson:"lastName" json:"last_name"`
	BirthDate    time.Time `bson:"birthDate" json:"birth_date"`
	District     string    `bson:"district" json:"district"`
	Division     string    `bson:"division" json:"division"`
	GuardianNIC  string    `bson:"guardianNIC" json:"-"`
	Password     string    `bson:"password" json:"-"`

	Email       string `bson:"email,omitempty" json:"email,omitempty"`
	PhoneNumber string `bson:"phoneNumber,omitempty" json:"phone_number,omitempty"`
	Address     string `bson:"address,omitempty" json:"address,omitempty"`

	BloodType         string            `bson:"bloodType,omitempty" json:"blood_type,omitempty"`
	Allergies         []string          `bson:"allergies,omitempty" json:"allergies,omitempty"`
	MedicalConditions []string          `bson:"medicalConditions,omitempty" json:"medical_conditions,omitempty"`
	EmergencyContact  *EmergencyContact `bson:"emergencyContact,omitempty" json:"emergency_contact,omitempty"`

	PendingEmail *PendingChange `bson:"pendingEmail,omitempty" json:"-"`
	PendingPhone *PendingChange `bson:"pendingPhone,omitempty" json:"-"`

	RecordedBy RecordedBy `bson:"recordedBy" json:"-"`
	CreatedAt  time.Time  `bson:"createdAt" json:"created_at"`
	UpdatedAt  time.Time  `bson:"updatedAt" json:"updated_at"`
}

// FullName joins first and last name for display.
func (c *Citizen) FullName() string {
	return c.FirstName + " " + c.LastName
}
