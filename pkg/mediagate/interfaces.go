package mediagate

import (
	"context"
	"io"
)

// Repository defines the interface for media record and settings persistence
type Repository interface {
	// Record operations. PutRecord returns ErrDuplicateCode when a record
	// with the same code already exists; GetRecord returns
	// ErrRecordNotFound when the code is unknown.
	PutRecord(ctx context.Context, record *MediaRecord) error
	GetRecord(ctx context.Context, code string) (*MediaRecord, error)

	// Settings operations: an untyped key/value store with last-write-wins
	// semantics. No schema validation happens at write time; invalid
	// channel references surface later as delivery failures.
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// DeliverOptions carries per-delivery presentation options.
type DeliverOptions struct {
	Caption        string
	ButtonText     string
	ButtonURL      string
	ProtectContent bool
}

// Platform defines the messaging-platform boundary. Implementations wrap
// every platform failure in a PlatformError; the gate and pipeline never
// see raw platform errors.
type Platform interface {
	// QueryMembership reports the user's live membership in a channel.
	// A non-nil error classifies the target as MembershipUnknown.
	QueryMembership(ctx context.Context, channel string, userID int64) (MembershipStatus, error)

	// StorePayload stores a redundant copy of a payload in a channel,
	// tagged with the given caption, and returns a reference to the copy.
	StorePayload(ctx context.Context, channel string, payloadRef string, kind MediaKind, caption string) (string, error)

	// DeliverPayload delivers a payload to a user.
	DeliverPayload(ctx context.Context, userID int64, payloadRef string, kind MediaKind, opts DeliverOptions) error

	// PostAnnouncement posts a cover image with a caption and deep link to
	// a public channel.
	PostAnnouncement(ctx context.Context, channel string, coverRef string, caption string, link string) error
}

// BlobStore defines the interface for payload byte storage backends. The
// bundled local platform keeps raw payloads in a BlobStore; messaging
// platforms that host payloads themselves do not need one.
type BlobStore interface {
	// Upload stores content under the given object key
	Upload(ctx context.Context, objectKey string, reader io.Reader) error

	// Download retrieves content stored under the given object key
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete removes content stored under the given object key
	Delete(ctx context.Context, objectKey string) error

	// GetDownloadURL returns a URL for downloading the object, when the
	// backend can serve one
	GetDownloadURL(ctx context.Context, objectKey string) (string, error)
}

// EventSink defines the interface for event handling
type EventSink interface {
	// RecordPublished is fired after a record commits
	RecordPublished(ctx context.Context, record *MediaRecord) error

	// AccessGranted is fired when a gated payload is delivered
	AccessGranted(ctx context.Context, userID int64, code string) error

	// AccessDenied is fired when the membership gate denies a request
	AccessDenied(ctx context.Context, userID int64, unmet []SubscriptionTarget) error

	// DonationReceived is fired when a non-admin submission arrives
	DonationReceived(ctx context.Context, donation *Donation) error
}
