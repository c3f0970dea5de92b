package mediagate

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrRecordNotFound indicates no media record exists for a code
	ErrRecordNotFound = errors.New("media record not found")

	// ErrDuplicateCode indicates a record with the same code already exists
	ErrDuplicateCode = errors.New("duplicate media code")

	// ErrSettingNotFound indicates a settings key has no stored value
	ErrSettingNotFound = errors.New("setting not found")

	// ErrNotAuthorized indicates the caller is not a configured admin
	ErrNotAuthorized = errors.New("not authorized to publish")

	// ErrNoActiveSession indicates the admin has no publish session in progress
	ErrNoActiveSession = errors.New("no active publish session")

	// ErrUnexpectedStep indicates a wizard input arrived out of order
	ErrUnexpectedStep = errors.New("unexpected publish step")

	// ErrEmptyTitle indicates an empty title was submitted for the title step
	ErrEmptyTitle = errors.New("title must not be empty")

	// ErrInvalidKind indicates an unsupported media kind
	ErrInvalidKind = errors.New("unsupported media kind")

	// ErrBackupWriteFailed indicates the redundant backup copy could not be
	// stored; the commit aborts and no record is created
	ErrBackupWriteFailed = errors.New("backup write failed")

	// ErrAnnouncementFailed indicates the public announcement could not be
	// posted; the record is already committed and retrievable
	ErrAnnouncementFailed = errors.New("announcement post failed")

	// ErrDonationNotFound indicates a donation ID has no pending submission
	ErrDonationNotFound = errors.New("donation not found")
)

// PublishError represents an error in the publish pipeline for one admin
type PublishError struct {
	AdminID int64
	Op      string
	Err     error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish operation %s failed for admin %d: %v", e.Op, e.AdminID, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// PlatformError represents a failure at the messaging-platform boundary.
// Raw platform errors are wrapped here at the call site and never escape
// into gate or pipeline logic.
type PlatformError struct {
	Op      string
	Channel string
	Err     error
}

func (e *PlatformError) Error() string {
	if e.Channel == "" {
		return fmt.Sprintf("platform operation %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("platform operation %s failed for channel %s: %v", e.Op, e.Channel, e.Err)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}
