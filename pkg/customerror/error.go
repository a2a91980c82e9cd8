package customerror

import "errors"

// The following errors serve as domain errors that can be used by the
// different layers. The handler in the entrypoint intercepts these and
// converts them to the relevant HTTP codes.
var (
	// Not found.
	ErrNotFound = errors.New("not found")
	// Another reconciliation run already holds the lock.
	ErrPruneInProgress = errors.New("prune already in progress")
)
