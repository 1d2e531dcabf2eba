package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks bad or missing input. Never retried
	// automatically; the user must correct the form.
	ErrValidation = errors.New("validation error")
	// ErrCapacity marks the attachment limit being exceeded.
	ErrCapacity = errors.New("capacity exceeded")
	// ErrDecode marks an input image that could not be decoded.
	ErrDecode = errors.New("image decode error")
	// ErrStorage marks local durable storage being unavailable. This is a
	// data-loss risk and must be surfaced prominently, never swallowed.
	ErrStorage = errors.New("local storage error")
	// ErrOffline marks an operation skipped because no connectivity was
	// observed. Retryable by re-invoking once online.
	ErrOffline = errors.New("offline")
	// ErrAlreadyRunning marks a reconciliation rejected because one is
	// already in flight. Advisory; callers should ignore or wait.
	ErrAlreadyRunning = errors.New("sync already running")
	// ErrUpload marks a remote blob upload failure, assumed transient.
	ErrUpload = errors.New("upload error")
	// ErrWrite marks a remote record write failure, assumed transient.
	ErrWrite = errors.New("record write error")
	// ErrTimeout marks a remote call exceeding its deadline.
	ErrTimeout = errors.New("timeout")
	// ErrNotFound marks a missing remote entity.
	ErrNotFound = errors.New("not found")
	// ErrConfiguration marks unusable configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrWrite
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retryable reports whether a fault can succeed on a later attempt without
// user intervention. Transient remote faults and offline skips qualify;
// validation, capacity, and decode faults require the user to act.
func Retryable(err error) bool {
	switch {
	case errors.Is(err, ErrUpload), errors.Is(err, ErrWrite), errors.Is(err, ErrTimeout), errors.Is(err, ErrOffline):
		return true
	default:
		return false
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
