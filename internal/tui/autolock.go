package tui

import "time"

// idleLock tracks activity inside the open vault. A zero timeout never expires.
type idleLock struct {
	lastActivity time.Time
	timeout      time.Duration
}

func newIdleLock(timeout time.Duration) idleLock {
	return idleLock{lastActivity: time.Now(), timeout: timeout}
}

func (l *idleLock) setTimeout(d time.Duration) {
	l.timeout = d
}

func (l *idleLock) recordActivity(now time.Time) {
	l.lastActivity = now
}

func (l idleLock) expired(now time.Time) bool {
	return l.timeout > 0 && now.Sub(l.lastActivity) > l.timeout
}

// remaining is the time left before expiry, or zero when disabled.
func (l idleLock) remaining(now time.Time) time.Duration {
	if l.timeout <= 0 {
		return 0
	}
	left := l.timeout - now.Sub(l.lastActivity)
	if left < 0 {
		return 0
	}
	return left
}
