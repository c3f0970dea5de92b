package mediagate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Settings keys as stored in the repository. The store itself is untyped
// key/value; this package is the only writer of these keys.
const (
	SettingSubscriptionTargets = "subscription_targets"
	SettingBackupChannel       = "backup_channel"
	SettingPublicChannel       = "public_channel"
	SettingWatchButtonText     = "watch_button_text"
	SettingJoinLink            = "join_link"
	SettingStartText           = "start_text"
	SettingProtectContent      = "protect_content"
)

// Default values applied when a key has no stored value.
const (
	DefaultWatchButtonText = "Watch now"
	DefaultStartText       = "Welcome! Send a content code or use a share link."
)

// Settings is the typed view over the operational key/value store. All
// fields stay mutable at runtime through UpdateSettings; reads always go
// back to the store, so concurrent edits resolve last-write-wins.
type Settings struct {
	SubscriptionTargets []SubscriptionTarget `json:"subscription_targets"`
	BackupChannel       string               `json:"backup_channel,omitempty"`
	PublicChannel       string               `json:"public_channel,omitempty"`
	WatchButtonText     string               `json:"watch_button_text"`
	JoinLink            string               `json:"join_link,omitempty"`
	StartText           string               `json:"start_text"`
	ProtectContent      bool                 `json:"protect_content"`
}

// encodeTargets flattens an ordered target list into its stored form.
// Order is preserved; it affects only how unmet targets are reported.
func encodeTargets(targets []SubscriptionTarget) string {
	parts := make([]string, 0, len(targets))
	for _, t := range targets {
		parts = append(parts, t.Channel)
	}
	return strings.Join(parts, ",")
}

// decodeTargets parses the stored form back into an ordered target list.
// Empty entries are dropped so a trailing comma cannot produce a target
// that can never be joined.
func decodeTargets(value string) []SubscriptionTarget {
	var targets []SubscriptionTarget
	for _, part := range strings.Split(value, ",") {
		channel := strings.TrimSpace(part)
		if channel == "" {
			continue
		}
		targets = append(targets, SubscriptionTarget{Channel: channel})
	}
	return targets
}

// loadSettings reads the full typed settings view, applying defaults for
// absent keys.
func loadSettings(ctx context.Context, repo Repository) (*Settings, error) {
	s := &Settings{
		WatchButtonText: DefaultWatchButtonText,
		StartText:       DefaultStartText,
	}

	read := func(key string) (string, bool, error) {
		value, err := repo.GetSetting(ctx, key)
		if err != nil {
			if errors.Is(err, ErrSettingNotFound) {
				return "", false, nil
			}
			return "", false, fmt.Errorf("failed to read setting %s: %w", key, err)
		}
		return value, true, nil
	}

	if value, ok, err := read(SettingSubscriptionTargets); err != nil {
		return nil, err
	} else if ok {
		s.SubscriptionTargets = decodeTargets(value)
	}
	if value, ok, err := read(SettingBackupChannel); err != nil {
		return nil, err
	} else if ok {
		s.BackupChannel = value
	}
	if value, ok, err := read(SettingPublicChannel); err != nil {
		return nil, err
	} else if ok {
		s.PublicChannel = value
	}
	if value, ok, err := read(SettingWatchButtonText); err != nil {
		return nil, err
	} else if ok && value != "" {
		s.WatchButtonText = value
	}
	if value, ok, err := read(SettingJoinLink); err != nil {
		return nil, err
	} else if ok {
		s.JoinLink = value
	}
	if value, ok, err := read(SettingStartText); err != nil {
		return nil, err
	} else if ok && value != "" {
		s.StartText = value
	}
	if value, ok, err := read(SettingProtectContent); err != nil {
		return nil, err
	} else if ok {
		if b, err := strconv.ParseBool(value); err == nil {
			s.ProtectContent = b
		}
	}

	return s, nil
}
