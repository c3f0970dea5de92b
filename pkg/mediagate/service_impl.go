package mediagate

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	repository Repository
	platform   Platform
	eventSink  EventSink

	linkBase string
	admins   map[int64]bool
	failOpen bool

	sessions  *sessionStore
	donations *donationStore
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithPlatform sets the messaging-platform client for the service
func WithPlatform(platform Platform) Option {
	return func(s *service) {
		s.platform = platform
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithLinkBase sets the base launch URI used when minting deep links
// (e.g. "https://t.me/mybot").
func WithLinkBase(base string) Option {
	return func(s *service) {
		s.linkBase = base
	}
}

// WithAdmins sets the user identities allowed to enter the publish pipeline
func WithAdmins(adminIDs []int64) Option {
	return func(s *service) {
		for _, id := range adminIDs {
			s.admins[id] = true
		}
	}
}

// WithFailOpen switches the membership gate to treat unknown membership as
// joined. The default is fail-closed: unknown counts as not joined.
func WithFailOpen(failOpen bool) Option {
	return func(s *service) {
		s.failOpen = failOpen
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		admins:    make(map[int64]bool),
		sessions:  newSessionStore(),
		donations: newDonationStore(),
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.platform == nil {
		return nil, fmt.Errorf("platform is required")
	}
	if s.eventSink == nil {
		s.eventSink = NewNoopEventSink()
	}

	return s, nil
}

// IsAdmin reports whether a user identity may enter the publish pipeline
func (s *service) IsAdmin(userID int64) bool {
	return s.admins[userID]
}

// Registry operations

func (s *service) GetRecord(ctx context.Context, code string) (*MediaRecord, error) {
	return s.repository.GetRecord(ctx, code)
}

// Settings operations

func (s *service) GetSettings(ctx context.Context) (*Settings, error) {
	return loadSettings(ctx, s.repository)
}

func (s *service) UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*Settings, error) {
	write := func(key, value string) error {
		if err := s.repository.SetSetting(ctx, key, value); err != nil {
			return fmt.Errorf("failed to write setting %s: %w", key, err)
		}
		return nil
	}

	if req.SubscriptionTargets != nil {
		if err := write(SettingSubscriptionTargets, encodeTargets(*req.SubscriptionTargets)); err != nil {
			return nil, err
		}
	}
	if req.BackupChannel != nil {
		if err := write(SettingBackupChannel, *req.BackupChannel); err != nil {
			return nil, err
		}
	}
	if req.PublicChannel != nil {
		if err := write(SettingPublicChannel, *req.PublicChannel); err != nil {
			return nil, err
		}
	}
	if req.WatchButtonText != nil {
		if err := write(SettingWatchButtonText, *req.WatchButtonText); err != nil {
			return nil, err
		}
	}
	if req.JoinLink != nil {
		if err := write(SettingJoinLink, *req.JoinLink); err != nil {
			return nil, err
		}
	}
	if req.StartText != nil {
		if err := write(SettingStartText, *req.StartText); err != nil {
			return nil, err
		}
	}
	if req.ProtectContent != nil {
		value := "false"
		if *req.ProtectContent {
			value = "true"
		}
		if err := write(SettingProtectContent, value); err != nil {
			return nil, err
		}
	}

	return loadSettings(ctx, s.repository)
}

// sessionStore holds the per-admin publish sessions. It is the only
// shared mutable in-process state besides the donation queue; handlers
// scheduled concurrently get last-write-wins semantics.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]*PublishSession
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[int64]*PublishSession)}
}

func (st *sessionStore) get(adminID int64) (*PublishSession, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	session, exists := st.sessions[adminID]
	if !exists {
		return nil, false
	}
	// Return a copy to prevent external modifications
	sessionCopy := *session
	return &sessionCopy, true
}

func (st *sessionStore) put(session *PublishSession) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sessionCopy := *session
	st.sessions[session.AdminID] = &sessionCopy
}

func (st *sessionStore) delete(adminID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()

	delete(st.sessions, adminID)
}

// donationStore holds pending non-admin submissions.
type donationStore struct {
	mu        sync.RWMutex
	donations map[uuid.UUID]*Donation
}

func newDonationStore() *donationStore {
	return &donationStore{donations: make(map[uuid.UUID]*Donation)}
}

func (st *donationStore) get(id uuid.UUID) (*Donation, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	donation, exists := st.donations[id]
	if !exists {
		return nil, false
	}
	donationCopy := *donation
	return &donationCopy, true
}

func (st *donationStore) put(donation *Donation) {
	st.mu.Lock()
	defer st.mu.Unlock()

	donationCopy := *donation
	st.donations[donation.ID] = &donationCopy
}

func (st *donationStore) delete(id uuid.UUID) {
	st.mu.Lock()
	defer st.mu.Unlock()

	delete(st.donations, id)
}

func (st *donationStore) list() []*Donation {
	st.mu.RLock()
	defer st.mu.RUnlock()

	result := make([]*Donation, 0, len(st.donations))
	for _, donation := range st.donations {
		donationCopy := *donation
		result = append(result, &donationCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
