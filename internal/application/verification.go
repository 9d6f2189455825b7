package application

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/evrs-lk/evrs-api/internal/domain/entity"
	repo "github.com/evrs-lk/evrs-api/internal/domain/repository"
	"github.com/evrs-lk/evrs-api/pkg/helpers"
	"github.com/evrs-lk/evrs-api/pkg/notify"
)

var (
	ErrInvalidTarget   = errors.New("invalid target value")
	ErrUnchangedTarget = errors.New("target equals the committed value")
	ErrPhoneInUse      = errors.New("phone number already in use")
	ErrNoPendingChange = errors.New("no pending change")
	ErrCodeExpired     = errors.New("verification code expired")
	ErrInvalidCode     = errors.New("invalid verification code")
	ErrTooManyAttempts = errors.New("too many verification attempts")
	ErrDispatchFailed  = errors.New("failed to deliver verification code")
	ErrAccountNotFound = errors.New("account not found")
)

// VerificationService runs the verified contact-change protocol for every
// account kind. The per-kind differences live entirely in the
// ContactDirectory passed to each call; the state machine here is shared.
//
// States per (account, channel): Idle -> Pending (slot written, unexpired) ->
// Idle again on commit, expiry, or a superseding request. A new request
// always overwrites the slot, voiding any earlier code.
type VerificationService struct {
	Phones      repo.PhoneIndex
	Dispatcher  notify.Dispatcher
	Logger      *logrus.Logger
	EmailTTL    time.Duration
	PhoneTTL    time.Duration
	MaxAttempts int

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewVerificationService(phones repo.PhoneIndex, dispatcher notify.Dispatcher, logger *logrus.Logger, emailTTL, phoneTTL time.Duration, maxAttempts int) *VerificationService {
	return &VerificationService{
		Phones:      phones,
		Dispatcher:  dispatcher,
		Logger:      logger,
		EmailTTL:    emailTTL,
		PhoneTTL:    phoneTTL,
		MaxAttempts: maxAttempts,
		Now:         time.Now,
	}
}

// TTL returns the code lifetime for a channel.
func (s *VerificationService) TTL(ch entity.Channel) time.Duration {
	if ch == entity.ChannelPhone {
		return s.PhoneTTL
	}
	return s.EmailTTL
}

// RequestChange validates target, writes (or overwrites) the pending slot
// with a fresh code, and dispatches the code to the new channel value. The
// slot is written before dispatch and stays written when delivery fails, so
// the caller can simply re-request.
func (s *VerificationService) RequestChange(ctx context.Context, dir repo.ContactDirectory, accountID string, ch entity.Channel, target string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return ErrInvalidTarget
	}

	switch ch {
	case entity.ChannelEmail:
		if _, err := mail.ParseAddress(target); err != nil {
			return ErrInvalidTarget
		}
	case entity.ChannelPhone:
		normalized, err := helpers.NormalizeLKPhone(target)
		if err != nil {
			return ErrInvalidTarget
		}
		target = normalized
	default:
		return ErrInvalidTarget
	}

	contact, err := dir.GetContact(ctx, accountID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrAccountNotFound
	}
	if err != nil {
		return err
	}

	if ch == entity.ChannelPhone {
		if contact.Phone == target {
			return ErrUnchangedTarget
		}
		// Uniqueness is checked against committed values only; a pending
		// request elsewhere does not reserve the number.
		inUse, err := s.Phones.PhoneInUse(ctx, target)
		if err != nil {
			return err
		}
		if inUse {
			return ErrPhoneInUse
		}
	}

	code, err := helpers.GenOTPCode()
	if err != nil {
		return err
	}
	now := s.Now()
	pending := entity.PendingChange{
		Target:    target,
		Code:      code,
		ExpiresAt: now.Add(s.TTL(ch)),
	}

	// Single-document overwrite: concurrent requests resolve last-write-wins
	// and the loser's code is void even before its expiry.
	if err := dir.SetPending(ctx, accountID, ch, pending); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	if err := s.Dispatcher.SendCode(ctx, ch, target, code, s.TTL(ch)); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{
				"kind":    dir.Kind(),
				"channel": ch,
			}).Warn("verification code dispatch failed")
		}
		return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}
	return nil
}

// ConfirmChange validates suppliedCode against the pending slot in order:
// existence, expiry, equality. On success the commit and the slot clear
// happen as one conditional storage update, so a request racing in between
// aborts the commit instead of committing a superseded value. Returns the
// committed value.
//
// Confirmation is not replayable: a second call after success fails with
// ErrNoPendingChange.
func (s *VerificationService) ConfirmChange(ctx context.Context, dir repo.ContactDirectory, accountID string, ch entity.Channel, suppliedCode string) (string, error) {
	suppliedCode = strings.TrimSpace(suppliedCode)
	if suppliedCode == "" {
		return "", ErrInvalidCode
	}

	contact, err := dir.GetContact(ctx, accountID)
	if errors.Is(err, repo.ErrNotFound) {
		return "", ErrAccountNotFound
	}
	if err != nil {
		return "", err
	}

	slot := contact.Pending(ch)
	if slot == nil || slot.Code == "" {
		return "", ErrNoPendingChange
	}

	now := s.Now()
	if slot.Expired(now) {
		// Eager clear; expiry is otherwise lazy, there is no sweeper.
		_ = dir.ClearPending(ctx, accountID, ch)
		return "", ErrCodeExpired
	}

	if suppliedCode != slot.Code {
		attempts, aerr := dir.IncrementAttempts(ctx, accountID, ch, slot.Code)
		if aerr != nil {
			// Slot moved under us; whoever replaced it owns a fresh budget.
			return "", ErrInvalidCode
		}
		if attempts >= s.MaxAttempts {
			_ = dir.ClearPending(ctx, accountID, ch)
			return "", ErrTooManyAttempts
		}
		return "", ErrInvalidCode
	}

	committed, err := dir.CommitPending(ctx, accountID, ch, suppliedCode, now)
	if errors.Is(err, repo.ErrPendingMismatch) {
		// The slot changed between validation and commit: either a
		// superseding request rewrote it or another confirm won.
		refreshed, rerr := dir.GetContact(ctx, accountID)
		if rerr == nil && refreshed.Pending(ch) == nil {
			return "", ErrNoPendingChange
		}
		return "", ErrInvalidCode
	}
	if err != nil {
		return "", err
	}

	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"kind":    dir.Kind(),
			"channel": ch,
		}).Info("contact change committed")
	}
	return committed, nil
}
