package service

import (
	"errors"
	"fmt"
)

// ValidationError rejects malformed input before any adapter call is made.
// It maps to a user-visible 400.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ErrNoFaceDetected means the enrollment image contained no detectable
// face. Semantically a rejection, not a system fault.
var ErrNoFaceDetected = errors.New("no face detected in image")

// Adapter subsystems used in AdapterError.
const (
	SubsystemBlobStore = "blob-store"
	SubsystemSignature = "signature-service"
	SubsystemMetadata  = "metadata"
	SubsystemNotifier  = "notifier"
)

// AdapterError wraps an infrastructure fault from one of the workflow's
// collaborators. It aborts the workflow at the failing stage; earlier
// completed stages are not compensated.
type AdapterError struct {
	Subsystem string
	Err       error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("%s: %v", e.Subsystem, e.Err)
}

func (e *AdapterError) Unwrap() error { return e.Err }
