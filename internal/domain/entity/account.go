package entity

import "time"

// AccountKind identifies which registry collection an account lives in.
type AccountKind string

const (
	KindCitizen  AccountKind = "citizen"
	KindHCP      AccountKind = "hcp"
	KindHospital AccountKind = "hospital"
	KindMOH      AccountKind = "moh"
	KindAdmin    AccountKind = "admin"
)

// Channel is a contact medium bound to an account.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

// PendingChange is an unconfirmed proposal to replace a channel's value,
// guarded by a single-use time-limited code. At most one exists per
// (account, channel); a new request overwrites it. A slot whose ExpiresAt
// has passed is treated as absent even before storage clears it.
type PendingChange struct {
	Target    string    `bson:"target" json:"target"`
	Code      string    `bson:"code" json:"-"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expires_at"`
	Attempts  int       `bson:"attempts" json:"-"`
}

// Expired reports whether the slot is logically absent at t.
func (p *PendingChange) Expired(t time.Time) bool {
	return t.After(p.ExpiresAt)
}

// Contact is the slice of an account record the contact-change protocol
// reads: the committed channel values and the two optional pending slots.
type Contact struct {
	AccountID    string
	Email        string
	Phone        string
	PendingEmail *PendingChange
	PendingPhone *PendingChange
}

// Pending returns the slot for ch, which may be nil.
func (c *Contact) Pending(ch Channel) *PendingChange {
	if ch == ChannelPhone {
		return c.PendingPhone
	}
	return c.PendingEmail
}

// Committed returns the committed value for ch.
func (c *Contact) Committed(ch Channel) string {
	if ch == ChannelPhone {
		return c.Phone
	}
	return c.Email
}
