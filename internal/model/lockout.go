package model

import (
	"time"
)

// Escalation policy: three free attempts, then two 30-second cooldown
// rounds, then a permanent lock. The two cooldown rounds before the
// permanent ban are intentional; see the login flow tests.
const (
	FreeAttempts     = 3
	MaxAttempts      = 5
	TempLockCooldown = 30 * time.Second
)

type LockState int

const (
	LockStateActive LockState = iota
	LockStateTempLocked
	LockStatePermanentlyLocked
)

func (s LockState) String() string {
	switch s {
	case LockStateTempLocked:
		return "temp_locked"
	case LockStatePermanentlyLocked:
		return "permanently_locked"
	default:
		return "active"
	}
}

// Lockout tracks consecutive failed login attempts for one account.
// It is persisted on the users row so concurrent sessions observe the
// same state. All transitions are pure; the caller persists the struct
// after Gate/Fail/Succeed and supplies the clock.
type Lockout struct {
	FailedAttempts      int        `db:"failed_attempts"`
	LockedUntil         *time.Time `db:"locked_until"`
	PermanentlyLockedAt *time.Time `db:"permanently_locked_at"`
}

// GateResult reports whether a login attempt may be evaluated at all.
// A denied gate consumes no attempt.
type GateResult struct {
	Allowed    bool
	State      LockState
	RetryAfter time.Duration // remaining cooldown when temp-locked
}

// FailResult describes the state after one failed password check.
type FailResult struct {
	State             LockState
	RemainingAttempts int           // meaningful while State == LockStateActive
	RetryAfter        time.Duration // cooldown length when a temp lock was triggered
}

// State returns the lock state at the given instant. An elapsed
// temporary lock reads as active; it is cleared on the next Gate call.
func (l *Lockout) State(now time.Time) LockState {
	if l.PermanentlyLockedAt != nil {
		return LockStatePermanentlyLocked
	}
	if l.LockedUntil != nil && now.Before(*l.LockedUntil) {
		return LockStateTempLocked
	}
	return LockStateActive
}

// Gate decides whether a login attempt proceeds to the password check.
// A temporary lock whose cooldown has elapsed self-clears here, before
// the password is evaluated for this request.
func (l *Lockout) Gate(now time.Time) GateResult {
	if l.PermanentlyLockedAt != nil {
		return GateResult{Allowed: false, State: LockStatePermanentlyLocked}
	}
	if l.LockedUntil != nil {
		if now.Before(*l.LockedUntil) {
			return GateResult{
				Allowed:    false,
				State:      LockStateTempLocked,
				RetryAfter: l.LockedUntil.Sub(now),
			}
		}
		l.LockedUntil = nil
	}
	return GateResult{Allowed: true, State: LockStateActive}
}

// Fail records one failed password check and escalates:
// attempts 1-3 stay active and report how many remain, attempts 4 and 5
// each start a 30s cooldown, anything past that locks permanently.
func (l *Lockout) Fail(now time.Time) FailResult {
	switch {
	case l.FailedAttempts < FreeAttempts:
		l.FailedAttempts++
		return FailResult{
			State:             LockStateActive,
			RemainingAttempts: FreeAttempts - l.FailedAttempts,
		}
	case l.FailedAttempts < MaxAttempts:
		l.FailedAttempts++
		until := now.Add(TempLockCooldown)
		l.LockedUntil = &until
		return FailResult{
			State:      LockStateTempLocked,
			RetryAfter: TempLockCooldown,
		}
	default:
		at := now
		l.PermanentlyLockedAt = &at
		l.LockedUntil = nil
		return FailResult{State: LockStatePermanentlyLocked}
	}
}

// Succeed resets the attempt counter after a successful authentication.
// The permanent flag is terminal and never cleared here.
func (l *Lockout) Succeed() {
	l.FailedAttempts = 0
	l.LockedUntil = nil
}

// RemainingSeconds reports the cooldown left, rounded up to whole
// seconds, as shown to the user.
func (g GateResult) RemainingSeconds() int {
	if g.RetryAfter <= 0 {
		return 0
	}
	return int((g.RetryAfter + time.Second - 1) / time.Second)
}
