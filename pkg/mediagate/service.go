package mediagate

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the main interface for the mediagate library
type Service interface {
	// Access operations
	Resolve(ctx context.Context, req AccessRequest) (*ResolveResult, error)
	CheckMembership(ctx context.Context, userID int64) (*GateResult, error)

	// Publish pipeline operations
	BeginUpload(ctx context.Context, req UploadRequest) (*PublishSession, error)
	SetTitle(ctx context.Context, adminID int64, title string) (*PublishSession, error)
	CommitCover(ctx context.Context, adminID int64, coverRef string) (*PublishResult, error)
	CancelPublish(ctx context.Context, adminID int64) error
	GetSession(ctx context.Context, adminID int64) (*PublishSession, error)

	// Donation operations
	SubmitDonation(ctx context.Context, req DonationRequest) (*Donation, error)
	ApproveDonation(ctx context.Context, adminID int64, donationID uuid.UUID) (*PublishSession, error)
	RejectDonation(ctx context.Context, adminID int64, donationID uuid.UUID) error
	ListDonations(ctx context.Context) ([]*Donation, error)

	// Registry operations
	GetRecord(ctx context.Context, code string) (*MediaRecord, error)

	// Settings operations
	GetSettings(ctx context.Context) (*Settings, error)
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*Settings, error)

	// IsAdmin reports whether a user identity may enter the publish pipeline
	IsAdmin(userID int64) bool
}
