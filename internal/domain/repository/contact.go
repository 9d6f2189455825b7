package repository

import (
	"context"
	"errors"
	"time"

	"github.com/evrs-lk/evrs-api/internal/domain/entity"
)

var (
	// ErrNotFound is returned when the addressed account does not exist.
	ErrNotFound = errors.New("not found")
	// ErrPendingMismatch is returned by CommitPending when no document matched
	// the (account, code, unexpired slot) filter: the slot is absent, expired,
	// holds a different code, or was overwritten by a concurrent request.
	ErrPendingMismatch = errors.New("pending change mismatch")
	// ErrDuplicate is returned by Create calls that violate a unique index.
	ErrDuplicate = errors.New("duplicate value")
)

// IsDuplicate reports whether err is a unique-constraint violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// ContactDirectory is the per-account-kind capability the contact-change
// protocol runs against. One implementation is shared by all four registry
// collections; the protocol itself never sees which kind it is operating on.
type ContactDirectory interface {
	Kind() entity.AccountKind

	// GetContact loads the contact slice of an account.
	GetContact(ctx context.Context, accountID string) (*entity.Contact, error)

	// SetPending writes the slot for ch, silently replacing any prior pending
	// change for that channel. The write must be a single atomic document
	// update so concurrent requests resolve to last-write-wins.
	SetPending(ctx context.Context, accountID string, ch entity.Channel, p entity.PendingChange) error

	// CommitPending atomically verifies that the slot for ch holds code and is
	// unexpired at now, writes the pending target into the committed field and
	// clears the slot, all in one conditional update. Returns the committed
	// value, or ErrPendingMismatch when the filter matched nothing.
	CommitPending(ctx context.Context, accountID string, ch entity.Channel, code string, now time.Time) (string, error)

	// IncrementAttempts bumps the slot's attempt counter, conditional on the
	// slot still holding code (a superseding request starts a fresh budget).
	// Returns the new counter value; ErrPendingMismatch when the slot moved.
	IncrementAttempts(ctx context.Context, accountID string, ch entity.Channel, code string) (int, error)

	// ClearPending removes the slot for ch if present.
	ClearPending(ctx context.Context, accountID string, ch entity.Channel) error
}

// PhoneIndex answers whether a phone number is already committed to any
// account of any kind. Pending values are not consulted.
type PhoneIndex interface {
	PhoneInUse(ctx context.Context, phone string) (bool, error)
}
