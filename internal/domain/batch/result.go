// Package batch describes per-item outcomes of bulk writes.
package batch

import (
	"fmt"
	"strings"
)

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of processing one item in a batch operation.
type Result struct {
	id     string
	status ItemStatus
	err    error
}

// NewOK creates a successful batch result.
func NewOK(id string) Result { return Result{id: id, status: StatusOK} }

// NewError creates a failed batch result.
func NewError(id string, err error) Result { return Result{id: id, status: StatusError, err: err} }

// ID returns the item identifier.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Failures returns the failed results, preserving input order.
func Failures(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.status == StatusError {
			failed = append(failed, r)
		}
	}
	return failed
}

// FailedItemsError reports every failed item of a bulk write.
type FailedItemsError struct {
	Total  int
	Failed []Result
}

func (e *FailedItemsError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "bulk write: %d of %d items failed", len(e.Failed), e.Total)
	for _, r := range e.Failed {
		fmt.Fprintf(&b, "; %s: %v", r.id, r.err)
	}
	return b.String()
}

// CheckResults returns a *FailedItemsError when any result failed, nil otherwise.
func CheckResults(results []Result) error {
	failed := Failures(results)
	if len(failed) == 0 {
		return nil
	}
	return &FailedItemsError{Total: len(results), Failed: failed}
}
