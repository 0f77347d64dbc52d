package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// JobsChecker checks that background jobs are being accepted.
type JobsChecker interface {
	Healthy() error
}
