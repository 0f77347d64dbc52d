// Package batch models per-item outcomes of bulk document writes.
package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusCreated ItemStatus = "created"
	StatusUpdated ItemStatus = "updated"
	StatusError   ItemStatus = "error"
)

// Result is the outcome of saving one document of a batch.
type Result struct {
	name   string
	status ItemStatus
	err    error
}

// NewSaved creates a successful result.
func NewSaved(name string, created bool) Result {
	if created {
		return Result{name: name, status: StatusCreated}
	}
	return Result{name: name, status: StatusUpdated}
}

// NewError creates a failed result.
func NewError(name string, err error) Result { return Result{name: name, status: StatusError, err: err} }

// Name returns the document name.
func (r Result) Name() string { return r.name }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Failed counts the failed results.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.status == StatusError {
			n++
		}
	}
	return n
}
