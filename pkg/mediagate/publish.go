package mediagate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// BeginUpload enters the publish wizard with a raw payload. A new upload
// while a session is active replaces it outright; there is no queueing.
func (s *service) BeginUpload(ctx context.Context, req UploadRequest) (*PublishSession, error) {
	if !s.IsAdmin(req.AdminID) {
		return nil, &PublishError{AdminID: req.AdminID, Op: "upload", Err: ErrNotAuthorized}
	}
	if !req.Kind.IsValid() {
		return nil, &PublishError{AdminID: req.AdminID, Op: "upload", Err: ErrInvalidKind}
	}
	if req.PayloadRef == "" {
		return nil, &PublishError{AdminID: req.AdminID, Op: "upload", Err: errors.New("payload reference is required")}
	}

	session := &PublishSession{
		AdminID:    req.AdminID,
		State:      SessionAwaitingTitle,
		PayloadRef: req.PayloadRef,
		Kind:       req.Kind,
		UpdatedAt:  nowUTC(),
	}
	s.sessions.put(session)

	return session, nil
}

// SetTitle advances a session from the title step to the cover step. Any
// non-empty text is accepted.
func (s *service) SetTitle(ctx context.Context, adminID int64, title string) (*PublishSession, error) {
	session, exists := s.sessions.get(adminID)
	if !exists {
		return nil, &PublishError{AdminID: adminID, Op: "title", Err: ErrNoActiveSession}
	}
	if session.State != SessionAwaitingTitle {
		return nil, &PublishError{AdminID: adminID, Op: "title", Err: ErrUnexpectedStep}
	}
	if strings.TrimSpace(title) == "" {
		return nil, &PublishError{AdminID: adminID, Op: "title", Err: ErrEmptyTitle}
	}

	session.Title = title
	session.State = SessionAwaitingCover
	session.UpdatedAt = nowUTC()
	s.sessions.put(session)

	return session, nil
}

// CommitCover executes the commit step as one logical unit: mint a code,
// store the backup copy, persist the record, post the announcement, and
// report the deep link. Backup failure is fatal and leaves the session at
// the cover step for another attempt; announcement failure is not, the
// record is already committed and retrievable.
func (s *service) CommitCover(ctx context.Context, adminID int64, coverRef string) (*PublishResult, error) {
	session, exists := s.sessions.get(adminID)
	if !exists {
		return nil, &PublishError{AdminID: adminID, Op: "commit", Err: ErrNoActiveSession}
	}
	if session.State != SessionAwaitingCover {
		return nil, &PublishError{AdminID: adminID, Op: "commit", Err: ErrUnexpectedStep}
	}
	if coverRef == "" {
		return nil, &PublishError{AdminID: adminID, Op: "commit", Err: errors.New("cover reference is required")}
	}

	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, &PublishError{AdminID: adminID, Op: "commit", Err: err}
	}

	record, err := s.commitRecord(ctx, session, settings)
	if err != nil {
		// The session stays at the cover step so the admin can retry or
		// cancel; no registry mutation has happened.
		return nil, &PublishError{AdminID: adminID, Op: "commit", Err: err}
	}

	result := &PublishResult{
		Record:   record,
		DeepLink: BuildDeepLink(s.linkBase, record.Code),
	}

	// Announcement failure degrades to a warning: the record is committed.
	if settings.PublicChannel != "" {
		caption := record.Title
		if err := s.platform.PostAnnouncement(ctx, settings.PublicChannel, coverRef, caption, result.DeepLink); err != nil {
			slog.Error("announcement post failed", "channel", settings.PublicChannel, "code", record.Code, "err", err)
			result.AnnouncementErr = fmt.Errorf("%w: %v", ErrAnnouncementFailed, err)
		}
	}

	s.sessions.delete(adminID)

	if err := s.eventSink.RecordPublished(ctx, record); err != nil {
		slog.Error("record published event failed", "code", record.Code, "err", err)
	}

	return result, nil
}

// commitRecord mints a unique code, stores the backup copy exactly once,
// and persists the record. It returns without registry mutation on backup
// failure. The repository's unique key backstops the pre-check; a duplicate
// there re-mints the code and reuses the already-stored backup copy (whose
// caption keeps the first minted code).
func (s *service) commitRecord(ctx context.Context, session *PublishSession, settings *Settings) (*MediaRecord, error) {
	code, err := s.mintCode(ctx)
	if err != nil {
		return nil, err
	}

	var backupRef string
	if settings.BackupChannel != "" {
		caption := fmt.Sprintf("%s | %s", code, session.Title)
		backupRef, err = s.platform.StorePayload(ctx, settings.BackupChannel, session.PayloadRef, session.Kind, caption)
		if err != nil {
			// Fatal: publishing with no recoverable backup is strictly
			// worse than rejecting the attempt.
			return nil, fmt.Errorf("%w: %v", ErrBackupWriteFailed, err)
		}
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		record := &MediaRecord{
			Code:       code,
			PayloadRef: session.PayloadRef,
			Kind:       session.Kind,
			Title:      session.Title,
			BackupRef:  backupRef,
			CreatedAt:  nowUTC(),
		}

		if err := s.repository.PutRecord(ctx, record); err != nil {
			if errors.Is(err, ErrDuplicateCode) {
				if code, err = s.mintCode(ctx); err != nil {
					return nil, err
				}
				continue
			}
			return nil, err
		}

		return record, nil
	}

	return nil, fmt.Errorf("could not mint a unique code after %d attempts", maxCodeAttempts)
}

// mintCode generates a fresh code, regenerating on collision with an
// existing record.
func (s *service) mintCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := GenerateCode()
		if err != nil {
			return "", err
		}

		_, err = s.repository.GetRecord(ctx, code)
		if errors.Is(err, ErrRecordNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
		// Code already taken, regenerate.
	}
	return "", fmt.Errorf("could not mint a unique code after %d attempts", maxCodeAttempts)
}

// CancelPublish discards the admin's session with zero side effects.
func (s *service) CancelPublish(ctx context.Context, adminID int64) error {
	if _, exists := s.sessions.get(adminID); !exists {
		return &PublishError{AdminID: adminID, Op: "cancel", Err: ErrNoActiveSession}
	}
	s.sessions.delete(adminID)
	return nil
}

// GetSession returns the admin's current wizard state. Admins with no
// session in progress get an idle session.
func (s *service) GetSession(ctx context.Context, adminID int64) (*PublishSession, error) {
	if !s.IsAdmin(adminID) {
		return nil, &PublishError{AdminID: adminID, Op: "session", Err: ErrNotAuthorized}
	}
	session, exists := s.sessions.get(adminID)
	if !exists {
		return &PublishSession{AdminID: adminID, State: SessionIdle}, nil
	}
	return session, nil
}

// Donation operations

// SubmitDonation accepts a non-admin submission and forwards the payload
// to every configured admin with an approve/reject affordance.
func (s *service) SubmitDonation(ctx context.Context, req DonationRequest) (*Donation, error) {
	if !req.Kind.IsValid() {
		return nil, ErrInvalidKind
	}
	if req.PayloadRef == "" {
		return nil, errors.New("payload reference is required")
	}

	donation := &Donation{
		ID:         uuid.New(),
		UserID:     req.UserID,
		PayloadRef: req.PayloadRef,
		Kind:       req.Kind,
		CreatedAt:  nowUTC(),
	}
	s.donations.put(donation)

	caption := fmt.Sprintf("Donation %s from user %d", donation.ID, donation.UserID)
	for adminID := range s.admins {
		if err := s.platform.DeliverPayload(ctx, adminID, donation.PayloadRef, donation.Kind, DeliverOptions{Caption: caption}); err != nil {
			slog.Error("donation forward failed", "admin_id", adminID, "donation_id", donation.ID, "err", err)
		}
	}

	if err := s.eventSink.DonationReceived(ctx, donation); err != nil {
		slog.Error("donation received event failed", "donation_id", donation.ID, "err", err)
	}

	return donation, nil
}

// ApproveDonation re-enters the publish pipeline at the title step using
// the forwarded payload, exactly as if the admin had uploaded it directly.
func (s *service) ApproveDonation(ctx context.Context, adminID int64, donationID uuid.UUID) (*PublishSession, error) {
	if !s.IsAdmin(adminID) {
		return nil, &PublishError{AdminID: adminID, Op: "approve_donation", Err: ErrNotAuthorized}
	}
	donation, exists := s.donations.get(donationID)
	if !exists {
		return nil, &PublishError{AdminID: adminID, Op: "approve_donation", Err: ErrDonationNotFound}
	}

	session, err := s.BeginUpload(ctx, UploadRequest{
		AdminID:    adminID,
		PayloadRef: donation.PayloadRef,
		Kind:       donation.Kind,
	})
	if err != nil {
		return nil, err
	}

	s.donations.delete(donationID)
	return session, nil
}

// RejectDonation discards a submission with no registry effect.
func (s *service) RejectDonation(ctx context.Context, adminID int64, donationID uuid.UUID) error {
	if !s.IsAdmin(adminID) {
		return &PublishError{AdminID: adminID, Op: "reject_donation", Err: ErrNotAuthorized}
	}
	if _, exists := s.donations.get(donationID); !exists {
		return &PublishError{AdminID: adminID, Op: "reject_donation", Err: ErrDonationNotFound}
	}
	s.donations.delete(donationID)
	return nil
}

// ListDonations returns the pending submissions, oldest first.
func (s *service) ListDonations(ctx context.Context) ([]*Donation, error) {
	donations := s.donations.list()
	return donations, nil
}
