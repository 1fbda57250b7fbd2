// Package status classifies the controller's instance status vocabulary into
// the coarse buckets the reconciler decides on.
//
// Ganeti reports instance status as a string with more values than the
// reconciler cares about. Classification is total: every string maps to
// exactly one bucket, unknown values land in BucketOther.
package status

// Instance status values reported by the controller.
// The list follows the RAPI instance resource documentation; only the values
// the reconciler distinguishes are named here.
const (
	// Running means the instance is up and supposed to be up.
	Running = "running"

	// AdminDown means the instance is stopped by the administrator.
	AdminDown = "ADMIN_down"

	// ErrorDown means the instance is down but supposed to be up.
	ErrorDown = "ERROR_down"
)

// Bucket is a coarse classification of an observed instance status.
type Bucket int

const (
	// BucketNotFound means the instance does not exist on the cluster.
	BucketNotFound Bucket = iota

	// BucketRunning means the instance is up.
	BucketRunning

	// BucketStopped means the instance is down, whether administratively
	// (ADMIN_down) or by failure (ERROR_down).
	BucketStopped

	// BucketOther covers every remaining status (ERROR_up, ADMIN_offline,
	// ERROR_nodedown, ...). The reconciler treats these like a degraded
	// running instance: stop and restart still apply.
	BucketOther
)

// String returns a human-readable bucket name.
func (b Bucket) String() string {
	switch b {
	case BucketNotFound:
		return "not-found"
	case BucketRunning:
		return "running"
	case BucketStopped:
		return "stopped"
	case BucketOther:
		return "other"
	}
	return "unknown"
}

// Classify maps an observed instance status string to its bucket.
func Classify(status string) Bucket {
	switch status {
	case Running:
		return BucketRunning
	case AdminDown, ErrorDown:
		return BucketStopped
	default:
		return BucketOther
	}
}

// IsRunning reports whether the status string denotes a running instance.
func IsRunning(status string) bool {
	return Classify(status) == BucketRunning
}

// IsStopped reports whether the status string denotes a stopped instance.
func IsStopped(status string) bool {
	return Classify(status) == BucketStopped
}
