package mediagate

// Request DTOs

// AccessRequest is one inbound deep-link request. Code is empty for plain
// launch requests with no payload.
type AccessRequest struct {
	UserID int64
	Code   string
}

// UploadRequest starts (or replaces) a publish session for an admin.
type UploadRequest struct {
	AdminID    int64
	PayloadRef string
	Kind       MediaKind
}

// DonationRequest is a non-admin submission offered for publication.
type DonationRequest struct {
	UserID     int64
	PayloadRef string
	Kind       MediaKind
}

// UpdateSettingsRequest carries partial settings updates. Nil fields are
// left unchanged; set fields overwrite with last-write-wins semantics.
type UpdateSettingsRequest struct {
	SubscriptionTargets *[]SubscriptionTarget
	BackupChannel       *string
	PublicChannel       *string
	WatchButtonText     *string
	JoinLink            *string
	StartText           *string
	ProtectContent      *bool
}
