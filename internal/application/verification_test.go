package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evrs-lk/evrs-api/internal/domain/entity"
	repo "github.com/evrs-lk/evrs-api/internal/domain/repository"
)

// memDirectory is an in-memory ContactDirectory covering one account kind.
type memDirectory struct {
	mu       sync.Mutex
	kind     entity.AccountKind
	contacts map[string]*entity.Contact
}

func newMemDirectory(kind entity.AccountKind) *memDirectory {
	return &memDirectory{kind: kind, contacts: map[string]*entity.Contact{}}
}

func (d *memDirectory) add(accountID, email, phone string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.contacts[accountID] = &entity.Contact{AccountID: accountID, Email: email, Phone: phone}
}

func (d *memDirectory) Kind() entity.AccountKind { return d.kind }

func (d *memDirectory) GetContact(_ context.Context, accountID string) (*entity.Contact, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.contacts[accountID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *c
	if c.PendingEmail != nil {
		p := *c.PendingEmail
		cp.PendingEmail = &p
	}
	if c.PendingPhone != nil {
		p := *c.PendingPhone
		cp.PendingPhone = &p
	}
	return &cp, nil
}

func (d *memDirectory) SetPending(_ context.Context, accountID string, ch entity.Channel, p entity.PendingChange) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.contacts[accountID]
	if !ok {
		return repo.ErrNotFound
	}
	if ch == entity.ChannelPhone {
		c.PendingPhone = &p
	} else {
		c.PendingEmail = &p
	}
	return nil
}

func (d *memDirectory) CommitPending(_ context.Context, accountID string, ch entity.Channel, code string, now time.Time) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.contacts[accountID]
	if !ok {
		return "", repo.ErrNotFound
	}
	slot := c.PendingEmail
	if ch == entity.ChannelPhone {
		slot = c.PendingPhone
	}
	if slot == nil || slot.Code != code || now.After(slot.ExpiresAt) {
		return "", repo.ErrPendingMismatch
	}
	target := slot.Target
	if ch == entity.ChannelPhone {
		c.Phone = target
		c.PendingPhone = nil
	} else {
		c.Email = target
		c.PendingEmail = nil
	}
	return target, nil
}

func (d *memDirectory) IncrementAttempts(_ context.Context, accountID string, ch entity.Channel, code string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.contacts[accountID]
	if !ok {
		return 0, repo.ErrNotFound
	}
	slot := c.PendingEmail
	if ch == entity.ChannelPhone {
		slot = c.PendingPhone
	}
	if slot == nil || slot.Code != code {
		return 0, repo.ErrPendingMismatch
	}
	slot.Attempts++
	return slot.Attempts, nil
}

func (d *memDirectory) ClearPending(_ context.Context, accountID string, ch entity.Channel) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.contacts[accountID]
	if !ok {
		return repo.ErrNotFound
	}
	if ch == entity.ChannelPhone {
		c.PendingPhone = nil
	} else {
		c.PendingEmail = nil
	}
	return nil
}

// PhoneInUse consults committed values only.
func (d *memDirectory) PhoneInUse(_ context.Context, phone string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range d.contacts {
		if c.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

// recordingDispatcher records every dispatched code and can be set to fail.
type recordingDispatcher struct {
	mu    sync.Mutex
	sent  []sentCode
	fail  bool
	calls int
}

type sentCode struct {
	ch     entity.Channel
	target string
	code   string
}

func (r *recordingDispatcher) SendCode(_ context.Context, ch entity.Channel, target, code string, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.fail {
		return errors.New("smtp down")
	}
	r.sent = append(r.sent, sentCode{ch: ch, target: target, code: code})
	return nil
}

func (r *recordingDispatcher) last(t *testing.T) sentCode {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.sent)
	return r.sent[len(r.sent)-1]
}

func newTestService(dir *memDirectory, disp *recordingDispatcher) *VerificationService {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewVerificationService(dir, disp, logger, 10*time.Minute, 15*time.Minute, 5)
}

func TestRequestAndConfirmEmailChange(t *testing.T) {
	dir := newMemDirectory(entity.KindCitizen)
	dir.add("CIT-1", "old@example.com", "+94771111111")
	disp := &recordingDispatcher{}
	svc := newTestService(dir, disp)
	ctx := context.Background()

	require.NoError(t, svc.RequestChange(ctx, dir, "CIT-1", entity.ChannelEmail, "new@example.com"))

	sent := disp.last(t)
	assert.Equal(t, entity.ChannelEmail, sent.ch)
	assert.Equal(t, "new@example.com", sent.target)
	assert.Len(t, sent.code, 6)

	committed, err := svc.ConfirmChange(ctx, dir, "CIT-1", entity.ChannelEmail, sent.code)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", committed)

	c, err := dir.GetContact(ctx, "CIT-1")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", c.Email)
	assert.Nil(t, c.PendingEmail, "slot must be cleared on commit")
}

func TestConfirmIsNotReplayable(t *testing.T) {
	dir := newMemDirectory(entity.KindCitizen)
	dir.add("CIT-1", "old@example.com", "")
	disp := &recordingDispatcher{}
	svc := newTestService(dir, disp)
	ctx := context.Background()

	require.NoError(t, svc.RequestChange(ctx, dir, "CIT-1", entity.ChannelEmail, "new@example.com"))
	code := disp.last(t).code

	_, err := svc.ConfirmChange(ctx, dir, "CIT-1", entity.ChannelEmail, code)
	require.NoError(t, err)

	_, err = svc.ConfirmChange(ctx, dir, "CIT-1", entity.ChannelEmail, code)
	assert.ErrorIs(t, err, ErrNoPendingChange)
}

func TestConfirmWithoutRequest(t *testing.T) {
	dir := newMemDirectory(entity.KindHCP)
	dir.add("HCP-1", "a@example.com", "")
	svc := newTestService(dir, &recordingDispatcher{})

	_, err := svc.ConfirmChange(context.Background(), dir, "HCP-1", entity.ChannelEmail, "123456")
	assert.ErrorIs(t, err, ErrNoPendingChange)
}

func TestExpiredCode(t *testing.T) {
	dir := newMemDirectory(entity.KindCitizen)
	dir.add("CIT-1", "old@example.com", "")
	disp := &recordingDispatcher{}
	svc := newTestService(dir, disp)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return base }
	require.NoError(t, svc.RequestChange(ctx, dir, "CIT-1", entity.ChannelEmail, "new@example.com"))
	code := disp.last(t).code

	// one second past the 10 minute email TTL
	svc.Now = func() time.Time { return base.Add(10*time.Minute + time.Second) }
	_, err := svc.ConfirmChange(ctx, dir, "CIT-1", entity.ChannelEmail, code)
	assert.ErrorIs(t, err, ErrCodeExpired)

	// the expired slot was eagerly cleared
	c, _ := dir.GetContact(ctx, "CIT-1")
	assert.Nil(t, c.PendingEmail)
}

func TestPhoneTTLIsLonger(t *testing.T) {
	dir := newMemDirectory(entity.KindHospital)
	dir.add("HOS-1", "", "+94770000000")
	disp := &recordingDispatcher{}
	svc := newTestService(dir, disp)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return base }
	require.NoError(t, svc.RequestChange(ctx, dir, "HOS-1", entity.ChannelPhone, "+94771234567"))
	code := disp.last(t).code

	// 12 minutes in: email codes would be dead, phone codes still live
	svc.Now = func() time.Time { return base.Add(12 * time.Minute) }
	committed, err := svc.ConfirmChange(ctx, dir, "HOS-1", entity.ChannelPhone, code)
	require.NoError(t, err)
	assert.Equal(t, "+94771234567", committed)
}

func TestSupersedingRequestVoidsOldCode(t *testing.T) {
	dir := newMemDirectory(entity.KindCitizen)
	dir.add("CIT-1", "old@example.com", "")
	disp := &recordingDispatcher{}
	svc := newTestService(dir, disp)
	ctx := context.Background()

	require.NoError(t, svc.RequestChange(ctx, dir, "CIT-1", entity.ChannelEmail, "first@example.com"))
	firstCode := disp.last(t).code

	require.NoError(t, svc.RequestChange(ctx, dir, "CIT-1", entity.ChannelEmail, "second@example.com"))
	secondCode := disp.last(t).code

	if firstCode != secondCode {
		_, err := svc.ConfirmChange(ctx, dir, "CIT-1", entity.ChannelEmail, firstCode)
		assert.ErrorIs(t, err, ErrInvalidCode)
	}

	committed, err := svc.ConfirmChange(ctx, dir, "CIT-1", entity.ChannelEmail, secondCode)
	require.NoError(t, err)
	assert.Equal(t, "second@example.com", committed)
}

func TestIndependentChannels(t *testing.T) {
	dir := newMemDirectory(entity.KindCitizen)
	dir.add("CIT-1", "old@example.com", "+94771111111")
	disp := &recordingDispatcher{}
	svc := newTestService(dir, disp)
	ctx := context.Background()

	require.NoError(t, svc.RequestChange(ctx, dir, "CIT-1", entity.ChannelEmail, "new@example.com"))
	emailCode := disp.last(t).code
	require.NoError(t, svc.RequestChange(ctx, dir, "CIT-1", entity.ChannelPhone, "+94772222222"))
	phoneCode := disp.last(t).code

	// confirming phone leaves the email slot alone
	_, err := svc.ConfirmChange(ctx, dir, "CIT-1", entity.ChannelPhone, phoneCode)
	require.NoError(t, err)

	committed, err := svc.ConfirmChange(ctx, dir, "CIT-1", entity.ChannelEmail, emailCode)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", committed)
}

func TestPhoneUniquenessAcrossAccounts(t *testing.T) {
	dir := newMemDirectory(entity.KindCitizen)
	dir.add("CIT-1", "", "+94771111111")
	dir.add("CIT-2", "", "+94772222222")
	svc := newTestService(dir, &recordingDispatcher{})

	err := svc.RequestChange(context.Background(), dir, "CIT-1", entity.ChannelPhone, "+94772222222")
	assert.ErrorIs(t, err, ErrPhoneInUse)
}

func TestPendingPhoneDoesNotReserveNumber(t *testing.T) {
	dir := newMemDirectory(entity.KindCitizen)
	dir.add("CIT-1", "", "+94771111111")
	dir.add("CIT-2", "", "+94772222222")
	disp := &recordingDispatcher{}
	svc := newTestService(dir, disp)
	ctx := context.Background()

	require.NoError(t, svc.RequestChange(ctx, dir, "CIT-1", entity.ChannelPhone, "+94773333333"))
	// same target is still available to another account while only pending
	require.NoError(t, svc.RequestChange(ctx, dir, "CIT-2", entity.ChannelPhone, "+94773333333"))
}

func TestUnchangedPhoneRejected(t *testing.T) {
	dir := newMemDirectory(entity.KindMOH)
	dir.add("MOH-1", "", "+94771111111")
	svc := newTestService(dir, &recordingDispatcher{})

	err := svc.RequestChange(context.Background(), dir, "MOH-1", entity.ChannelPhone, "+94771111111")
	assert.ErrorIs(t, err, ErrUnchangedTarget)
}

func TestInvalidTargets(t *testing.T) {
	dir := newMemDirectory(entity.KindCitizen)
	dir.add("CIT-1", "old@example.com", "")
	svc := newTestService(dir, &recordingDispatcher{})
	ctx := context.Background()

	for _, tc := range []struct {
		ch     entity.Channel
		target string
	}{
		{entity.ChannelEmail, ""},
		{entity.ChannelEmail, "not-an-email"},
		{entity.ChannelPhone, "0771234567"},
		{entity.ChannelPhone, "+1415555000"},
		{entity.ChannelPhone, "+9477123456"},
	} {
		err := svc.RequestChange(ctx, dir, "CIT-1", tc.ch, tc.target)
		assert.ErrorIs(t, err, ErrInvalidTarget, "target %q", tc.target)
	}
}

func TestPhoneNormalization(t *testing.T) {
	dir := newMemDirectory(entity.KindCitizen)
	dir.add("CIT-1", "", "+94770000000")
	disp := &recordingDispatcher{}
	svc := newTestService(dir, disp)
	ctx := context.Background()

	require.NoError(t, svc.RequestChange(ctx, dir, "CIT-1", entity.ChannelPhone, "94771234567"))
	code := disp.last(t).code
	assert.Equal(t, "+94771234567", disp.last(t).target)

	committed, err := svc.ConfirmChange(ctx, dir, "CIT-1", entity.ChannelPhone, code)
	require.NoError(t, err)
	assert.Equal(t, "+94771234567", committed)
}

func TestAttemptLockout(t *testing.T) {
	dir := newMemDirectory(entity.KindCitizen)
	dir.add("CIT-1", "old@example.com", "")
	disp := &recordingDispatcher{}
	svc := newTestService(dir, disp)
	ctx := context.Background()

	require.NoError(t, svc.RequestChange(ctx, dir, "CIT-1", entity.ChannelEmail, "new@example.com"))
	code := disp.last(t).code

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	for i := 0; i < 4; i++ {
		_, err := svc.ConfirmChange(ctx, dir, "CIT-1", entity.ChannelEmail, wrong)
		assert.ErrorIs(t, err, ErrInvalidCode)
	}
	_, err := svc.ConfirmChange(ctx, dir, "CIT-1", entity.ChannelEmail, wrong)
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	// slot cleared; even the right code no longer works
	_, err = svc.ConfirmChange(ctx, dir, "CIT-1", entity.ChannelEmail, code)
	assert.ErrorIs(t, err, ErrNoPendingChange)
}

func TestSupersedeResetsAttemptBudget(t *testing.T) {
	dir := newMemDirectory(entity.KindCitizen)
	dir.add("CIT-1", "old@example.com", "")
	disp := &recordingDispatcher{}
	svc := newTestService(dir, disp)
	ctx := context.Background()

	require.NoError(t, svc.RequestChange(ctx, dir, "CIT-1", entity.ChannelEmail, "new@example.com"))
	first := disp.last(t).code
	wrong := "000000"
	if wrong == first {
		wrong = "000001"
	}
	for i := 0; i < 4; i++ {
		_, _ = svc.ConfirmChange(ctx, dir, "CIT-1", entity.ChannelEmail, wrong)
	}

	// one attempt left; a fresh request starts a fresh budget
	require.NoError(t, svc.RequestChange(ctx, dir, "CIT-1", entity.ChannelEmail, "new@example.com"))
	second := disp.last(t).code
	wrong = "000000"
	if wrong == second {
		wrong = "000001"
	}
	for i := 0; i < 4; i++ {
		_, err := svc.ConfirmChange(ctx, dir, "CIT-1", entity.ChannelEmail, wrong)
		assert.ErrorIs(t, err, ErrInvalidCode)
	}

	committed, err := svc.ConfirmChange(ctx, dir, "CIT-1", entity.ChannelEmail, second)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", committed)
}

func TestDispatchFailureLeavesSlotConfirmable(t *testing.T) {
	dir := newMemDirectory(entity.KindCitizen)
	dir.add("CIT-1", "old@example.com", "")
	disp := &recordingDispatcher{fail: true}
	svc := newTestService(dir, disp)
	ctx := context.Background()

	err := svc.RequestChange(ctx, dir, "CIT-1", entity.ChannelEmail, "new@example.com")
	assert.ErrorIs(t, err, ErrDispatchFailed)
	assert.Equal(t, 1, disp.calls, "dispatcher invoked exactly once")

	// the slot was written before dispatch and is still confirmable
	c, _ := dir.GetContact(ctx, "CIT-1")
	require.NotNil(t, c.PendingEmail)

	committed, cerr := svc.ConfirmChange(ctx, dir, "CIT-1", entity.ChannelEmail, c.PendingEmail.Code)
	require.NoError(t, cerr)
	assert.Equal(t, "new@example.com", committed)
}

func TestUnknownAccount(t *testing.T) {
	dir := newMemDirectory(entity.KindCitizen)
	svc := newTestService(dir, &recordingDispatcher{})
	ctx := context.Background()

	err := svc.RequestChange(ctx, dir, "CIT-404", entity.ChannelEmail, "a@example.com")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = svc.ConfirmChange(ctx, dir, "CIT-404", entity.ChannelEmail, "123456")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
