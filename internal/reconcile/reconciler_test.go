package reconcile

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rrey/collection-ganeti/api/v1alpha1"
	"github.com/rrey/collection-ganeti/internal/rapi"
	"github.com/rrey/collection-ganeti/internal/status"
	"github.com/rrey/collection-ganeti/internal/translate"
)

func newTestReconciler(client *mockInstanceClient, waiter *mockJobWaiter, wait bool) *Reconciler {
	return newWithDeps(client, waiter, Options{Wait: wait, JobTimeout: time.Second}, zerolog.Nop())
}

func desiredInstance(name string, state v1alpha1.DesiredState) *v1alpha1.Instance {
	inst := v1alpha1.NewInstance(name)
	inst.Spec.State = state
	return inst
}

func TestNew_WiresWaiterPollInterval(t *testing.T) {
	client := rapi.NewClient(rapi.Config{}, zerolog.Nop())

	r := New(client, Options{Wait: true, PollInterval: 5 * time.Second}, zerolog.Nop())

	waiter, ok := r.waiter.(*rapi.Waiter)
	require.True(t, ok)
	assert.Equal(t, 5*time.Second, waiter.Interval)
	assert.Same(t, client, waiter.Jobs)
}

func TestReconcile_AbsentOnMissingInstance(t *testing.T) {
	client := newMockInstanceClient()
	waiter := newMockJobWaiter()
	r := newTestReconciler(client, waiter, true)

	res, err := r.Reconcile(context.Background(), desiredInstance("vm01.example.com", v1alpha1.StateAbsent))

	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, "No instance found", res.Message)
	assert.Nil(t, res.Instance)
	assert.Zero(t, client.submissions())
	assert.Empty(t, waiter.waitCalls)
}

func TestReconcile_CreateMissingInstance(t *testing.T) {
	client := newMockInstanceClient()
	waiter := newMockJobWaiter()
	r := newTestReconciler(client, waiter, true)

	// Not found until the creation job is submitted, running afterwards
	client.getInstanceFunc = func(name string) (*rapi.Instance, error) {
		if len(client.createInstanceCalls) > 0 {
			return &rapi.Instance{Name: name, Status: status.Running}, nil
		}
		return nil, fmt.Errorf("instance %s: %w", name, rapi.ErrInstanceNotFound)
	}

	inst := desiredInstance("vm01.example.com", v1alpha1.StatePresent)
	inst.Spec.MemoryMB = 2048
	inst.Spec.VCPUs = 2

	res, err := r.Reconcile(context.Background(), inst)

	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "Instance vm01.example.com created", res.Message)
	require.NotNil(t, res.Instance)
	assert.Equal(t, status.Running, res.Instance.Status)

	require.Len(t, client.createInstanceCalls, 1)
	payload, ok := client.createInstanceCalls[0].(*translate.CreatePayload)
	require.True(t, ok, "create payload should come from the translator")
	assert.Equal(t, 2048, payload.BeParams.Memory)
	assert.Equal(t, 2, payload.BeParams.VCPUs)

	assert.Equal(t, []rapi.JobID{42}, waiter.waitCalls)
}

func TestReconcile_PresentOnExistingInstanceIsNoop(t *testing.T) {
	client := newMockInstanceClient()
	client.returnsInstance(&rapi.Instance{Name: "vm01.example.com", Status: status.Running})
	waiter := newMockJobWaiter()
	r := newTestReconciler(client, waiter, true)

	inst := desiredInstance("vm01.example.com", v1alpha1.StatePresent)

	// Applying the same manifest twice never submits a job
	for i := 0; i < 2; i++ {
		res, err := r.Reconcile(context.Background(), inst)
		require.NoError(t, err)
		assert.False(t, res.Changed)
		assert.Equal(t, "Instance present", res.Message)
	}

	assert.Zero(t, client.submissions())
}

func TestReconcile_StopRunningInstance(t *testing.T) {
	client := newMockInstanceClient()
	client.returnsInstance(&rapi.Instance{Name: "vm01.example.com", Status: status.Running})
	waiter := newMockJobWaiter()
	r := newTestReconciler(client, waiter, true)

	res, err := r.Reconcile(context.Background(), desiredInstance("vm01.example.com", v1alpha1.StateStopped))

	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "Shutdown complete", res.Message)
	assert.Equal(t, []string{"vm01.example.com"}, client.stopInstanceCalls)
	assert.Equal(t, []rapi.JobID{42}, waiter.waitCalls)
}

func TestReconcile_StopStoppedInstanceIsNoop(t *testing.T) {
	client := newMockInstanceClient()
	client.returnsInstance(&rapi.Instance{Name: "vm01.example.com", Status: status.AdminDown})
	waiter := newMockJobWaiter()
	r := newTestReconciler(client, waiter, true)

	res, err := r.Reconcile(context.Background(), desiredInstance("vm01.example.com", v1alpha1.StateStopped))

	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, "Instance already stopped, status ADMIN_down", res.Message)
	assert.Zero(t, client.submissions())
	assert.Len(t, client.getInstanceCalls, 1, "no-op runs observe exactly once")
}

func TestReconcile_StartMissingInstanceFails(t *testing.T) {
	client := newMockInstanceClient()
	waiter := newMockJobWaiter()
	r := newTestReconciler(client, waiter, true)

	_, err := r.Reconcile(context.Background(), desiredInstance("vm01.example.com", v1alpha1.StateStarted))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not present, can't set to started")
	assert.Zero(t, client.submissions())
}

func TestReconcile_RestartStoppedInstanceStartsIt(t *testing.T) {
	client := newMockInstanceClient()
	client.returnsInstance(&rapi.Instance{Name: "vm01.example.com", Status: status.ErrorDown})
	waiter := newMockJobWaiter()
	r := newTestReconciler(client, waiter, true)

	res, err := r.Reconcile(context.Background(), desiredInstance("vm01.example.com", v1alpha1.StateRestarted))

	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "Startup complete", res.Message)
	assert.Equal(t, []string{"vm01.example.com"}, client.startInstanceCalls)
	assert.Empty(t, client.rebootInstanceCalls)
}

func TestReconcile_DeleteRunningInstance(t *testing.T) {
	client := newMockInstanceClient()
	waiter := newMockJobWaiter()
	r := newTestReconciler(client, waiter, true)

	// Running until the destruction job is submitted, gone afterwards
	client.getInstanceFunc = func(name string) (*rapi.Instance, error) {
		if len(client.deleteInstanceCalls) > 0 {
			return nil, fmt.Errorf("instance %s: %w", name, rapi.ErrInstanceNotFound)
		}
		return &rapi.Instance{Name: name, Status: status.Running}, nil
	}

	res, err := r.Reconcile(context.Background(), desiredInstance("vm01.example.com", v1alpha1.StateAbsent))

	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "Destruction complete", res.Message)
	assert.Nil(t, res.Instance)
	assert.Equal(t, []string{"vm01.example.com"}, client.deleteInstanceCalls)
}

func TestReconcile_NoWaitReturnsSignalMessage(t *testing.T) {
	client := newMockInstanceClient()
	client.returnsInstance(&rapi.Instance{Name: "vm01.example.com", Status: status.AdminDown})
	waiter := newMockJobWaiter()
	r := newTestReconciler(client, waiter, false)

	res, err := r.Reconcile(context.Background(), desiredInstance("vm01.example.com", v1alpha1.StateStarted))

	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "Startup signal sent", res.Message)
	assert.Empty(t, waiter.waitCalls, "should not wait when wait is disabled")
}

func TestReconcile_FailedJobIsAnError(t *testing.T) {
	client := newMockInstanceClient()
	client.returnsInstance(&rapi.Instance{Name: "vm01.example.com", Status: status.Running})
	waiter := newMockJobWaiter()
	waiter.waitFunc = func(id rapi.JobID, _ time.Duration) (bool, string) {
		return false, fmt.Sprintf("job %d failed: [NodeUnreachable node2.example.com]", id)
	}
	r := newTestReconciler(client, waiter, true)

	_, err := r.Reconcile(context.Background(), desiredInstance("vm01.example.com", v1alpha1.StateStopped))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not succeed")
	assert.Contains(t, err.Error(), "NodeUnreachable")
}

func TestReconcile_InvalidDiskSpecFailsBeforeSubmission(t *testing.T) {
	client := newMockInstanceClient()
	waiter := newMockJobWaiter()
	r := newTestReconciler(client, waiter, true)

	inst := desiredInstance("vm01.example.com", v1alpha1.StatePresent)
	inst.Spec.Disks = []v1alpha1.DiskSpec{{}}

	_, err := r.Reconcile(context.Background(), inst)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "spec.disks[0].size is required")
	assert.Zero(t, client.submissions())
}

func TestReconcile_TransportErrorOnObserveIsFatal(t *testing.T) {
	client := newMockInstanceClient()
	client.getInstanceFunc = func(name string) (*rapi.Instance, error) {
		return nil, &rapi.StatusError{Code: 502, Body: "bad gateway"}
	}
	waiter := newMockJobWaiter()
	r := newTestReconciler(client, waiter, true)

	_, err := r.Reconcile(context.Background(), desiredInstance("vm01.example.com", v1alpha1.StatePresent))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Zero(t, client.submissions())
}
