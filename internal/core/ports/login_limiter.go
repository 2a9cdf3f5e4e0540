package ports

import "context"

// LoginLimiter throttles repeated failed logins per account name.
// Check returns domain.ErrTooManyAttempts once the account is in
// cooldown; RecordFailure counts a failed attempt; Reset clears the
// counter after a successful login.
type LoginLimiter interface {
	Check(ctx context.Context, name string) error
	RecordFailure(ctx context.Context, name string) error
	Reset(ctx context.Context, name string) error
}
