package entity

import "time"

// RecordedBy identifies the account that created a record.
type RecordedBy struct {
	ID   string      `bson:"id" json:"id"`
	Role AccountKind `bson:"role" json:"role"`
}

// HealthcareProvider is an HCP account (doctors, nurses, field staff).
type HealthcareProvider struct {
	HCPID        string         `bson:"hcpId" json:"hcp_id"`
	FullName     string         `bson:"fullName" json:"full_name"`
	NIC          string         `bson:"nic" json:"nic"`
	Designation  string         `bson:"designation,omitempty" json:"designation,omitempty"`
	HospitalID   string         `bson:"hospitalId,omitempty" json:"hospital_id,omitempty"`
	Password     string         `bson:"password" json:"-"`
	Email        string         `bson:"email,omitempty" json:"email,omitempty"`
	PhoneNumber  string         `bson:"phoneNumber,omitempty" json:"phone_number,omitempty"`
	PendingEmail *PendingChange `bson:"pendingEmail,omitempty" json:"-"`
	PendingPhone *PendingChange `bson:"pendingPhone,omitempty" json:"-"`
	CreatedAt    time.Time      `bson:"createdAt" json:"created_at"`
	UpdatedAt    time.Time      `bson:"updatedAt" json:"updated_at"`
}

// Hospital is an institutional account.
type Hospital struct {
	HospitalID   string         `bson:"hospitalId" json:"hospital_id"`
	Name         string         `bson:"name" json:"name"`
	District     string         `bson:"district" json:"district"`
	Division     string         `bson:"division,omitempty" json:"division,omitempty"`
	Password     string         `bson:"password" json:"-"`
	Email        string         `bson:"email,omitempty" json:"email,omitempty"`
	PhoneNumber  string         `bson:"phoneNumber,omitempty" json:"phone_number,omitempty"`
	PendingEmail *PendingChange `bson:"pendingEmail,omitempty" json:"-"`
	PendingPhone *PendingChange `bson:"pendingPhone,omitempty" json:"-"`
	CreatedAt    time.Time      `bson:"createdAt" json:"created_at"`
	UpdatedAt    time.Time      `bson:"updatedAt" json:"updated_at"`
}

// Admin is a back-office account. Admins have no contact-change slots; their
// details are managed out of band.
type Admin struct {
	AdminID   string    `bson:"adminId" json:"admin_id"`
	FullName  string    `bson:"fullName" json:"full_name"`
	Email     string    `bson:"email,omitempty" json:"email,omitempty"`
	Password  string    `bson:"password" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
}

// MOHOfficial is a ministry-of-health divisional account.
type MOHOfficial struct {
	MOHID        string         `bson:"mohId" json:"moh_id"`
	Name         string         `bson:"name" json:"name"`
	District     string         `bson:"district" json:"district"`
	Division     string         `bson:"division" json:"division"`
	Password     string         `bson:"password" json:"-"`
	Email        string         `bson:"email,omitempty" json:"email,omitempty"`
	PhoneNumber  string         `bson:"phoneNumber,omitempty" json:"phone_number,omitempty"`
	PendingEmail *PendingChange `bson:"pendingEmail,omitempty" json:"-"`
	PendingPhone *PendingChange `bson:"pendingPhone,omitempty" json:"-"`
	CreatedAt    time.Time      `bson:"createdAt" json:"created_at"`
	UpdatedAt    time.Time      `bson:"updatedAt" json:"updated_at"`
}
