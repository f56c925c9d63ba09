package sla

import "errors"

var (
	// ErrInvalidThresholds is returned when a threshold update is rejected
	ErrInvalidThresholds = errors.New("invalid threshold configuration")

	// ErrUnknownCategory is returned for a category outside the tracked set
	ErrUnknownCategory = errors.New("unknown work item category")

	// ErrDataSource is returned when the pending-item store is unreachable
	ErrDataSource = errors.New("pending item source unavailable")

	// ErrPersistence is returned when an alert-state write does not apply
	ErrPersistence = errors.New("alert state write failed")

	// ErrNotification is returned when one or more notification sends failed
	ErrNotification = errors.New("notification delivery failed")

	// ErrScanInProgress is returned when a scan cycle is requested while
	// another one is still running
	ErrScanInProgress = errors.New("scan cycle already in progress")
)
