package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ryanekas417-dev/botenak2/pkg/mediagate"
)

// Delivery records one payload delivered to a user.
type Delivery struct {
	UserID     int64
	PayloadRef string
	Kind       mediagate.MediaKind
	Opts       mediagate.DeliverOptions
}

// Announcement records one post to a public channel.
type Announcement struct {
	Channel  string
	CoverRef string
	Caption  string
	Link     string
}

// Backup records one redundant payload copy stored in a channel.
type Backup struct {
	Channel    string
	PayloadRef string
	Caption    string
	Ref        string
}

// Platform is an in-process implementation of the mediagate.Platform
// interface. Payload bytes live in a BlobStore; membership is set
// explicitly. It backs local development and tests.
type Platform struct {
	mu            sync.RWMutex
	store         mediagate.BlobStore
	memberships   map[string]map[int64]mediagate.MembershipStatus
	deliveries    []Delivery
	announcements []Announcement
	backups       []Backup

	// Error injection for failure-path tests.
	storeErr      error
	announceErr   error
	deliverErr    error
	membershipErr map[string]error
}

// New creates a new in-process platform backed by the given blob store.
func New(store mediagate.BlobStore) *Platform {
	return &Platform{
		store:         store,
		memberships:   make(map[string]map[int64]mediagate.MembershipStatus),
		membershipErr: make(map[string]error),
	}
}

// SetMembership sets a user's membership status in a channel.
func (p *Platform) SetMembership(channel string, userID int64, status mediagate.MembershipStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.memberships[channel] == nil {
		p.memberships[channel] = make(map[int64]mediagate.MembershipStatus)
	}
	p.memberships[channel][userID] = status
}

// FailMembership makes membership queries for a channel return an error.
func (p *Platform) FailMembership(channel string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.membershipErr[channel] = err
}

// FailStore makes StorePayload return the given error.
func (p *Platform) FailStore(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.storeErr = err
}

// FailAnnounce makes PostAnnouncement return the given error.
func (p *Platform) FailAnnounce(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.announceErr = err
}

// FailDeliver makes DeliverPayload return the given error.
func (p *Platform) FailDeliver(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deliverErr = err
}

// Deliveries returns the payloads delivered so far.
func (p *Platform) Deliveries() []Delivery {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Delivery(nil), p.deliveries...)
}

// Announcements returns the channel posts made so far.
func (p *Platform) Announcements() []Announcement {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Announcement(nil), p.announcements...)
}

// Backups returns the payload copies stored so far.
func (p *Platform) Backups() []Backup {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Backup(nil), p.backups...)
}

// QueryMembership reports the configured membership status. Unconfigured
// (channel, user) pairs are not joined.
func (p *Platform) QueryMembership(ctx context.Context, channel string, userID int64) (mediagate.MembershipStatus, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if err := p.membershipErr[channel]; err != nil {
		return mediagate.MembershipUnknown, &mediagate.PlatformError{Op: "query_membership", Channel: channel, Err: err}
	}

	if members, ok := p.memberships[channel]; ok {
		if status, ok := members[userID]; ok {
			return status, nil
		}
	}
	return mediagate.MembershipNotJoined, nil
}

// StorePayload copies the payload bytes into a per-channel prefix of the
// blob store and returns the key of the copy.
func (p *Platform) StorePayload(ctx context.Context, channel string, payloadRef string, kind mediagate.MediaKind, caption string) (string, error) {
	p.mu.RLock()
	storeErr := p.storeErr
	p.mu.RUnlock()

	if storeErr != nil {
		return "", &mediagate.PlatformError{Op: "store_payload", Channel: channel, Err: storeErr}
	}

	src, err := p.store.Download(ctx, payloadRef)
	if err != nil {
		return "", &mediagate.PlatformError{Op: "store_payload", Channel: channel, Err: err}
	}
	defer src.Close()

	backupKey := fmt.Sprintf("%s/%s", channel, uuid.New())
	if err := p.store.Upload(ctx, backupKey, src); err != nil {
		return "", &mediagate.PlatformError{Op: "store_payload", Channel: channel, Err: err}
	}

	p.mu.Lock()
	p.backups = append(p.backups, Backup{
		Channel:    channel,
		PayloadRef: payloadRef,
		Caption:    caption,
		Ref:        backupKey,
	})
	p.mu.Unlock()

	return backupKey, nil
}

// DeliverPayload records the delivery.
func (p *Platform) DeliverPayload(ctx context.Context, userID int64, payloadRef string, kind mediagate.MediaKind, opts mediagate.DeliverOptions) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.deliverErr != nil {
		return &mediagate.PlatformError{Op: "deliver_payload", Err: p.deliverErr}
	}

	p.deliveries = append(p.deliveries, Delivery{
		UserID:     userID,
		PayloadRef: payloadRef,
		Kind:       kind,
		Opts:       opts,
	})
	return nil
}

// PostAnnouncement records the channel post.
func (p *Platform) PostAnnouncement(ctx context.Context, channel string, coverRef string, caption string, link string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.announceErr != nil {
		return &mediagate.PlatformError{Op: "post_announcement", Channel: channel, Err: p.announceErr}
	}

	p.announcements = append(p.announcements, Announcement{
		Channel:  channel,
		CoverRef: coverRef,
		Caption:  caption,
		Link:     link,
	})
	return nil
}
