package reconcile

import (
	"context"
	"time"

	"github.com/rrey/collection-ganeti/internal/rapi"
)

// instanceClient defines the RAPI operations needed for reconciliation.
//
// In production, this is satisfied by *rapi.Client.
// In tests, this is satisfied by mock implementations.
type instanceClient interface {
	// GetInstance fetches the observed instance state, rapi.ErrInstanceNotFound
	// when the instance does not exist
	GetInstance(ctx context.Context, name string) (*rapi.Instance, error)

	// CreateInstance submits an instance creation job
	CreateInstance(ctx context.Context, payload interface{}) (rapi.JobID, error)

	// StartInstance submits a startup job
	StartInstance(ctx context.Context, name string) (rapi.JobID, error)

	// StopInstance submits a shutdown job
	StopInstance(ctx context.Context, name string) (rapi.JobID, error)

	// RebootInstance submits a reboot job
	RebootInstance(ctx context.Context, name string) (rapi.JobID, error)

	// DeleteInstance submits a destruction job
	DeleteInstance(ctx context.Context, name string) (rapi.JobID, error)
}

// jobWaiter converts a submitted job id into a bounded-time pass/fail outcome.
//
// In production, this is satisfied by *rapi.Waiter.
// In tests, this is satisfied by mock implementations.
type jobWaiter interface {
	Wait(ctx context.Context, id rapi.JobID, timeout time.Duration) (bool, string)
}
