package mediagate

import (
	"time"

	"github.com/google/uuid"
)

// MediaKind is the domain type for the kind of a stored payload.
type MediaKind string

// Media kind constants (typed).
const (
	KindImage     MediaKind = "image"
	KindVideo     MediaKind = "video"
	KindDocument  MediaKind = "document"
	KindAnimation MediaKind = "animation"
)

// IsValid reports whether k is one of the supported media kinds.
func (k MediaKind) IsValid() bool {
	switch k {
	case KindImage, KindVideo, KindDocument, KindAnimation:
		return true
	}
	return false
}

// MediaRecord is a published media item, addressable by its opaque code.
// Records are immutable after creation: they are only superseded by a new
// record with a new code, never updated in place.
type MediaRecord struct {
	Code       string    `json:"code"`
	PayloadRef string    `json:"payload_ref"`
	Kind       MediaKind `json:"kind"`
	Title      string    `json:"title"`
	BackupRef  string    `json:"backup_ref,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// SubscriptionTarget is a channel or group whose membership gates access
// to published content.
type SubscriptionTarget struct {
	Channel string `json:"channel"`
}

// MembershipStatus is the classification of a user's relationship to a
// subscription target.
type MembershipStatus string

const (
	MembershipJoined    MembershipStatus = "joined"
	MembershipNotJoined MembershipStatus = "not_joined"
	// MembershipUnknown means the platform query failed: misconfigured
	// target, visibility error, or a transient platform fault.
	MembershipUnknown MembershipStatus = "unknown"
)

// GateResult is the outcome of evaluating the membership gate for a user.
// Unmet preserves the configured target order.
type GateResult struct {
	Allowed bool                 `json:"allowed"`
	Unmet   []SubscriptionTarget `json:"unmet,omitempty"`
}

// SessionState is the domain type for publish wizard states.
type SessionState string

// Publish session states (typed). A session only exists in the non-idle
// states; SessionIdle is reported when no session is held for an admin.
const (
	SessionIdle          SessionState = "idle"
	SessionAwaitingTitle SessionState = "awaiting_title"
	SessionAwaitingCover SessionState = "awaiting_cover"
)

// PublishSession is the transient state of one admin's publish wizard run.
// It is replaced wholesale by a new upload from the same admin and
// discarded on cancel or commit.
type PublishSession struct {
	AdminID    int64        `json:"admin_id"`
	State      SessionState `json:"state"`
	PayloadRef string       `json:"payload_ref"`
	Kind       MediaKind    `json:"kind"`
	Title      string       `json:"title,omitempty"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// PublishResult is the outcome of a successful commit. AnnouncementErr is
// non-nil when the record committed but the public announcement failed;
// the record is still retrievable by code.
type PublishResult struct {
	Record          *MediaRecord `json:"record"`
	DeepLink        string       `json:"deep_link"`
	AnnouncementErr error        `json:"-"`
}

// Donation is a non-admin submission awaiting an admin's approve/reject
// decision. Approval re-enters the publish wizard at the title step with
// the forwarded payload.
type Donation struct {
	ID         uuid.UUID `json:"id"`
	UserID     int64     `json:"user_id"`
	PayloadRef string    `json:"payload_ref"`
	Kind       MediaKind `json:"kind"`
	CreatedAt  time.Time `json:"created_at"`
}

// ResolveOutcome is the domain type for access resolver outcomes.
type ResolveOutcome string

const (
	// OutcomeLanding is returned for requests that carry no code.
	OutcomeLanding ResolveOutcome = "landing"
	// OutcomeDenied means one or more subscription targets are unmet.
	OutcomeDenied ResolveOutcome = "denied"
	// OutcomeDelivered means the payload was delivered to the requester.
	OutcomeDelivered ResolveOutcome = "delivered"
	// OutcomeNotFound is terminal: the code has no record and the request
	// is never auto-retried.
	OutcomeNotFound ResolveOutcome = "not_found"
)

// ResolveResult is the observable outcome of one access request.
type ResolveResult struct {
	Outcome  ResolveOutcome `json:"outcome"`
	Text     string         `json:"text,omitempty"`
	Gate     *GateResult    `json:"gate,omitempty"`
	JoinLink string         `json:"join_link,omitempty"`
	Record   *MediaRecord   `json:"record,omitempty"`
}
