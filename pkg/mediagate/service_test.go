package mediagate_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanekas417-dev/botenak2/pkg/mediagate"
	platformmemory "github.com/ryanekas417-dev/botenak2/pkg/mediagate/platform/memory"
	repomemory "github.com/ryanekas417-dev/botenak2/pkg/mediagate/repo/memory"
	memorystorage "github.com/ryanekas417-dev/botenak2/pkg/mediagate/storage/memory"
)

const (
	testAdminID = int64(1000)
	testUserID  = int64(2000)
)

// testEnv bundles the service with the fakes behind it so tests can set
// membership and inspect platform traffic.
type testEnv struct {
	svc      mediagate.Service
	repo     mediagate.Repository
	platform *platformmemory.Platform
	store    mediagate.BlobStore
}

func setupTestService(t *testing.T, opts ...mediagate.Option) *testEnv {
	t.Helper()

	repo := repomemory.New()
	store := memorystorage.New()
	platform := platformmemory.New(store)

	options := append([]mediagate.Option{
		mediagate.WithRepository(repo),
		mediagate.WithPlatform(platform),
		mediagate.WithAdmins([]int64{testAdminID}),
		mediagate.WithLinkBase("https://t.me/gatebot"),
	}, opts...)

	svc, err := mediagate.New(options...)
	require.NoError(t, err)
	require.NotNil(t, svc)

	return &testEnv{svc: svc, repo: repo, platform: platform, store: store}
}

func TestServiceCreation(t *testing.T) {
	repo := repomemory.New()
	platform := platformmemory.New(memorystorage.New())

	tests := []struct {
		name        string
		options     []mediagate.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			options:     []mediagate.Option{},
			expectError: true,
		},
		{
			name: "missing platform should fail",
			options: []mediagate.Option{
				mediagate.WithRepository(repo),
			},
			expectError: true,
		},
		{
			name: "with repository and platform should succeed",
			options: []mediagate.Option{
				mediagate.WithRepository(repo),
				mediagate.WithPlatform(platform),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := mediagate.New(tt.options...)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestIsAdmin(t *testing.T) {
	env := setupTestService(t)

	assert.True(t, env.svc.IsAdmin(testAdminID))
	assert.False(t, env.svc.IsAdmin(testUserID))
}

func TestSettings(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	t.Run("defaults apply when nothing is stored", func(t *testing.T) {
		settings, err := env.svc.GetSettings(ctx)
		require.NoError(t, err)

		assert.Empty(t, settings.SubscriptionTargets)
		assert.Empty(t, settings.BackupChannel)
		assert.Empty(t, settings.PublicChannel)
		assert.Equal(t, mediagate.DefaultWatchButtonText, settings.WatchButtonText)
		assert.Equal(t, mediagate.DefaultStartText, settings.StartText)
		assert.False(t, settings.ProtectContent)
	})

	t.Run("partial update round-trips", func(t *testing.T) {
		targets := []mediagate.SubscriptionTarget{{Channel: "@chA"}, {Channel: "@chB"}}
		backup := "@backup"
		protect := true

		settings, err := env.svc.UpdateSettings(ctx, mediagate.UpdateSettingsRequest{
			SubscriptionTargets: &targets,
			BackupChannel:       &backup,
			ProtectContent:      &protect,
		})
		require.NoError(t, err)

		assert.Equal(t, targets, settings.SubscriptionTargets)
		assert.Equal(t, backup, settings.BackupChannel)
		assert.True(t, settings.ProtectContent)
		// Untouched keys keep their defaults.
		assert.Equal(t, mediagate.DefaultStartText, settings.StartText)
	})

	t.Run("target order is preserved", func(t *testing.T) {
		targets := []mediagate.SubscriptionTarget{{Channel: "@z"}, {Channel: "@a"}, {Channel: "@m"}}
		settings, err := env.svc.UpdateSettings(ctx, mediagate.UpdateSettingsRequest{
			SubscriptionTargets: &targets,
		})
		require.NoError(t, err)
		assert.Equal(t, targets, settings.SubscriptionTargets)
	})

	t.Run("last write wins", func(t *testing.T) {
		first := "first"
		second := "second"

		_, err := env.svc.UpdateSettings(ctx, mediagate.UpdateSettingsRequest{StartText: &first})
		require.NoError(t, err)
		settings, err := env.svc.UpdateSettings(ctx, mediagate.UpdateSettingsRequest{StartText: &second})
		require.NoError(t, err)

		assert.Equal(t, second, settings.StartText)
	})
}

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := mediagate.GenerateCode()
		require.NoError(t, err)
		assert.Len(t, code, mediagate.CodeLength)
		for _, c := range code {
			assert.True(t,
				(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9'),
				"unexpected character %q in code %s", c, code)
		}
		seen[code] = true
	}
	// 100 draws from a 62^8 space should not collide.
	assert.Len(t, seen, 100)
}

func TestDeepLink(t *testing.T) {
	link := mediagate.BuildDeepLink("https://t.me/gatebot", "aB3dE5g7")
	assert.Equal(t, "https://t.me/gatebot?start=aB3dE5g7", link)

	code, err := mediagate.ParseDeepLink(link)
	require.NoError(t, err)
	assert.Equal(t, "aB3dE5g7", code)

	t.Run("no code present", func(t *testing.T) {
		code, err := mediagate.ParseDeepLink("https://t.me/gatebot")
		require.NoError(t, err)
		assert.Empty(t, code)
	})

	t.Run("base with existing query", func(t *testing.T) {
		link := mediagate.BuildDeepLink("https://t.me/gatebot?lang=en", "aB3dE5g7")

		u, err := url.Parse(link)
		require.NoError(t, err)
		assert.Equal(t, "en", u.Query().Get("lang"))
		assert.Equal(t, "aB3dE5g7", u.Query().Get("start"))

		code, err := mediagate.ParseDeepLink(link)
		require.NoError(t, err)
		assert.Equal(t, "aB3dE5g7", code)
	})
}
