package rapi

// Instance is the observed representation of an instance as returned by the
// controller's instance resource. Only the fields the reconciler and the
// output formatters consume are mapped; the controller returns more.
type Instance struct {
	// Name is the instance name.
	Name string `json:"name" yaml:"name"`

	// Status is the controller status string, e.g. "running", "ADMIN_down",
	// "ERROR_down". See the status package for the bucket classification.
	Status string `json:"status" yaml:"status"`

	// AdminState is the state the administrator asked for ("up"/"down").
	AdminState string `json:"admin_state,omitempty" yaml:"admin_state,omitempty"`

	// OperState reports whether the instance is actually running.
	OperState bool `json:"oper_state,omitempty" yaml:"oper_state,omitempty"`

	// OS is the OS create script and variant the instance was deployed with.
	OS string `json:"os,omitempty" yaml:"os,omitempty"`

	// PNode is the primary node name.
	PNode string `json:"pnode,omitempty" yaml:"pnode,omitempty"`

	// SNodes are the secondary node names (drbd).
	SNodes []string `json:"snodes,omitempty" yaml:"snodes,omitempty"`

	// DiskTemplate is the storage backend kind backing the instance disks.
	DiskTemplate string `json:"disk_template,omitempty" yaml:"disk_template,omitempty"`

	// Tags are the instance tags.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// JobID identifies an asynchronous controller job.
type JobID int64

// JobStatus is the controller's job status vocabulary.
type JobStatus string

const (
	// JobQueued means the job is waiting to be picked up.
	JobQueued JobStatus = "queued"

	// JobWaiting means the job is waiting for locks.
	JobWaiting JobStatus = "waiting"

	// JobCanceling means a cancel request is being processed.
	JobCanceling JobStatus = "canceling"

	// JobRunning means the job is executing.
	JobRunning JobStatus = "running"

	// JobSuccess is the terminal status of a completed job.
	JobSuccess JobStatus = "success"

	// JobError is the terminal status of a failed job.
	JobError JobStatus = "error"

	// JobCanceled is the terminal status of a canceled job.
	JobCanceled JobStatus = "canceled"
)

// Terminal reports whether no further status transition can occur.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobSuccess, JobError, JobCanceled:
		return true
	}
	return false
}

// Job is the observed state of an asynchronous controller job.
type Job struct {
	// ID is the job identifier. Set from the request, not the response body.
	ID JobID `json:"-"`

	// Status is the current job status.
	Status JobStatus `json:"status"`

	// Opresult carries per-operation result details. For failed jobs the
	// first entry describes the failure, e.g. ["OpPrereqError", "..."].
	Opresult []interface{} `json:"opresult,omitempty"`
}
