package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rrey/collection-ganeti/internal/rapi"
)

// mockInstanceClient is a mock implementation of the instanceClient interface
// for testing.
type mockInstanceClient struct {
	mu sync.Mutex

	// Configurable behavior
	getInstanceFunc    func(name string) (*rapi.Instance, error)
	createInstanceFunc func(payload interface{}) (rapi.JobID, error)
	startInstanceFunc  func(name string) (rapi.JobID, error)
	stopInstanceFunc   func(name string) (rapi.JobID, error)
	rebootInstanceFunc func(name string) (rapi.JobID, error)
	deleteInstanceFunc func(name string) (rapi.JobID, error)

	// Call tracking
	getInstanceCalls    []string
	createInstanceCalls []interface{}
	startInstanceCalls  []string
	stopInstanceCalls   []string
	rebootInstanceCalls []string
	deleteInstanceCalls []string
}

// newMockInstanceClient creates a mock client with default behavior: the
// instance does not exist and every submission succeeds with job 42.
func newMockInstanceClient() *mockInstanceClient {
	m := &mockInstanceClient{}

	m.getInstanceFunc = func(name string) (*rapi.Instance, error) {
		return nil, fmt.Errorf("instance %s: %w", name, rapi.ErrInstanceNotFound)
	}
	m.createInstanceFunc = func(payload interface{}) (rapi.JobID, error) {
		return 42, nil
	}
	m.startInstanceFunc = func(name string) (rapi.JobID, error) {
		return 42, nil
	}
	m.stopInstanceFunc = func(name string) (rapi.JobID, error) {
		return 42, nil
	}
	m.rebootInstanceFunc = func(name string) (rapi.JobID, error) {
		return 42, nil
	}
	m.deleteInstanceFunc = func(name string) (rapi.JobID, error) {
		return 42, nil
	}

	return m
}

// returnsInstance makes GetInstance report the given instance on every call.
func (m *mockInstanceClient) returnsInstance(inst *rapi.Instance) {
	m.getInstanceFunc = func(string) (*rapi.Instance, error) {
		return inst, nil
	}
}

func (m *mockInstanceClient) GetInstance(_ context.Context, name string) (*rapi.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getInstanceCalls = append(m.getInstanceCalls, name)
	return m.getInstanceFunc(name)
}

func (m *mockInstanceClient) CreateInstance(_ context.Context, payload interface{}) (rapi.JobID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createInstanceCalls = append(m.createInstanceCalls, payload)
	return m.createInstanceFunc(payload)
}

func (m *mockInstanceClient) StartInstance(_ context.Context, name string) (rapi.JobID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startInstanceCalls = append(m.startInstanceCalls, name)
	return m.startInstanceFunc(name)
}

func (m *mockInstanceClient) StopInstance(_ context.Context, name string) (rapi.JobID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopInstanceCalls = append(m.stopInstanceCalls, name)
	return m.stopInstanceFunc(name)
}

func (m *mockInstanceClient) RebootInstance(_ context.Context, name string) (rapi.JobID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rebootInstanceCalls = append(m.rebootInstanceCalls, name)
	return m.rebootInstanceFunc(name)
}

func (m *mockInstanceClient) DeleteInstance(_ context.Context, name string) (rapi.JobID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteInstanceCalls = append(m.deleteInstanceCalls, name)
	return m.deleteInstanceFunc(name)
}

// submissions returns the total number of lifecycle jobs submitted.
func (m *mockInstanceClient) submissions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.createInstanceCalls) +
		len(m.startInstanceCalls) +
		len(m.stopInstanceCalls) +
		len(m.rebootInstanceCalls) +
		len(m.deleteInstanceCalls)
}

// mockJobWaiter is a mock implementation of the jobWaiter interface for
// testing.
type mockJobWaiter struct {
	mu sync.Mutex

	// Configurable behavior
	waitFunc func(id rapi.JobID, timeout time.Duration) (bool, string)

	// Call tracking
	waitCalls []rapi.JobID
}

// newMockJobWaiter creates a mock waiter where every job succeeds.
func newMockJobWaiter() *mockJobWaiter {
	return &mockJobWaiter{
		waitFunc: func(rapi.JobID, time.Duration) (bool, string) {
			return true, "Success"
		},
	}
}

func (m *mockJobWaiter) Wait(_ context.Context, id rapi.JobID, timeout time.Duration) (bool, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waitCalls = append(m.waitCalls, id)
	return m.waitFunc(id, timeout)
}
