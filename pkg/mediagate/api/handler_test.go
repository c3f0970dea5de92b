package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanekas417-dev/botenak2/pkg/mediagate"
	"github.com/ryanekas417-dev/botenak2/pkg/mediagate/api"
	platformmemory "github.com/ryanekas417-dev/botenak2/pkg/mediagate/platform/memory"
	repomemory "github.com/ryanekas417-dev/botenak2/pkg/mediagate/repo/memory"
	memorystorage "github.com/ryanekas417-dev/botenak2/pkg/mediagate/storage/memory"
)

const (
	testAdminID = int64(1000)
	testUserID  = int64(2000)
)

type apiEnv struct {
	server     *httptest.Server
	svc        mediagate.Service
	platform   *platformmemory.Platform
	adminToken string
}

func setupAPI(t *testing.T) *apiEnv {
	t.Helper()

	repo := repomemory.New()
	platform := platformmemory.New(memorystorage.New())

	svc, err := mediagate.New(
		mediagate.WithRepository(repo),
		mediagate.WithPlatform(platform),
		mediagate.WithAdmins([]int64{testAdminID}),
		mediagate.WithLinkBase("https://t.me/gatebot"),
	)
	require.NoError(t, err)

	handler := api.NewHandler(svc, "test-secret")
	server := httptest.NewServer(handler.Routes())
	t.Cleanup(server.Close)

	_, token, err := handler.TokenAuth().Encode(map[string]interface{}{"admin_id": testAdminID})
	require.NoError(t, err)

	return &apiEnv{server: server, svc: svc, platform: platform, adminToken: token}
}

func (e *apiEnv) request(t *testing.T, method, path string, body interface{}, authed bool) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+e.adminToken)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestAdminRoutesRequireToken(t *testing.T) {
	env := setupAPI(t)

	resp := env.request(t, http.MethodGet, "/publish/session", nil, false)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPublishFlowOverHTTP(t *testing.T) {
	env := setupAPI(t)

	resp := env.request(t, http.MethodPost, "/publish/upload", map[string]string{
		"payload_ref": "payload-1",
		"kind":        "image",
	}, true)
	var session struct {
		State string `json:"state"`
	}
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &session)
	assert.Equal(t, "awaiting_title", session.State)

	resp = env.request(t, http.MethodPost, "/publish/title", map[string]string{"title": "Ep1"}, true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &session)
	assert.Equal(t, "awaiting_cover", session.State)

	resp = env.request(t, http.MethodPost, "/publish/cover", map[string]string{"cover_ref": "cover-1"}, true)
	var publish struct {
		Code     string `json:"code"`
		DeepLink string `json:"deep_link"`
	}
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &publish)
	assert.NotEmpty(t, publish.Code)
	assert.Contains(t, publish.DeepLink, publish.Code)

	// The committed record resolves through the public access path.
	resp = env.request(t, http.MethodPost, "/access", map[string]interface{}{
		"user_id": testUserID,
		"code":    publish.Code,
	}, false)
	var access struct {
		Outcome string `json:"outcome"`
	}
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &access)
	assert.Equal(t, "delivered", access.Outcome)
}

func TestPublishStepErrorsOverHTTP(t *testing.T) {
	env := setupAPI(t)

	t.Run("title without session", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/publish/title", map[string]string{"title": "Ep1"}, true)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("cover before title", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/publish/upload", map[string]string{
			"payload_ref": "payload-1",
			"kind":        "image",
		}, true)
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp = env.request(t, http.MethodPost, "/publish/cover", map[string]string{"cover_ref": "cover-1"}, true)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("invalid kind", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/publish/upload", map[string]string{
			"payload_ref": "payload-1",
			"kind":        "sticker",
		}, true)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestLaunchEndpoint(t *testing.T) {
	env := setupAPI(t)

	t.Run("no code returns the landing text", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, fmt.Sprintf("/launch?user_id=%d", testUserID), nil, false)
		var access struct {
			Outcome string `json:"outcome"`
			Text    string `json:"text"`
		}
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		decodeBody(t, resp, &access)
		assert.Equal(t, "landing", access.Outcome)
		assert.Equal(t, mediagate.DefaultStartText, access.Text)
	})

	t.Run("unknown code is 404", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, fmt.Sprintf("/launch?user_id=%d&start=zzz", testUserID), nil, false)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("missing user id is rejected", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/launch?start=zzz", nil, false)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestAccessDeniedCarriesJoinPrompts(t *testing.T) {
	env := setupAPI(t)
	ctx := context.Background()

	targets := []mediagate.SubscriptionTarget{{Channel: "@chA"}, {Channel: "@chB"}}
	joinLink := "https://t.me/joinhub"
	_, err := env.svc.UpdateSettings(ctx, mediagate.UpdateSettingsRequest{
		SubscriptionTargets: &targets,
		JoinLink:            &joinLink,
	})
	require.NoError(t, err)

	resp := env.request(t, http.MethodPost, "/access", map[string]interface{}{
		"user_id": testUserID,
		"code":    "zzz",
	}, false)
	var access struct {
		Outcome     string `json:"outcome"`
		JoinPrompts []struct {
			Channel string `json:"channel"`
		} `json:"join_prompts"`
		JoinLink string `json:"join_link"`
		Retry    bool   `json:"retry"`
	}
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	decodeBody(t, resp, &access)

	assert.Equal(t, "denied", access.Outcome)
	require.Len(t, access.JoinPrompts, 2)
	assert.Equal(t, "@chA", access.JoinPrompts[0].Channel)
	assert.Equal(t, "@chB", access.JoinPrompts[1].Channel)
	assert.Equal(t, joinLink, access.JoinLink)
	assert.True(t, access.Retry)
}

func TestDonationsOverHTTP(t *testing.T) {
	env := setupAPI(t)

	resp := env.request(t, http.MethodPost, "/donations", map[string]interface{}{
		"user_id":     testUserID,
		"payload_ref": "donated-1",
		"kind":        "video",
	}, false)
	var donation struct {
		ID string `json:"id"`
	}
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &donation)
	require.NotEmpty(t, donation.ID)

	resp = env.request(t, http.MethodGet, "/donations", nil, true)
	var donations []struct {
		ID string `json:"id"`
	}
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &donations)
	require.Len(t, donations, 1)

	resp = env.request(t, http.MethodPost, "/donations/"+donation.ID+"/approve", nil, true)
	var session struct {
		State      string `json:"state"`
		PayloadRef string `json:"payload_ref"`
	}
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &session)
	assert.Equal(t, "awaiting_title", session.State)
	assert.Equal(t, "donated-1", session.PayloadRef)

	t.Run("approve of a consumed donation is rejected", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/donations/"+donation.ID+"/approve", nil, true)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed donation id is rejected", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/donations/not-a-uuid/reject", nil, true)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSettingsOverHTTP(t *testing.T) {
	env := setupAPI(t)

	resp := env.request(t, http.MethodGet, "/settings", nil, true)
	var settings struct {
		WatchButtonText string `json:"watch_button_text"`
		ProtectContent  bool   `json:"protect_content"`
	}
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &settings)
	assert.Equal(t, mediagate.DefaultWatchButtonText, settings.WatchButtonText)
	assert.False(t, settings.ProtectContent)

	resp = env.request(t, http.MethodPut, "/settings", map[string]interface{}{
		"subscription_targets": []string{"@chA", "@chB"},
		"protect_content":      true,
	}, true)
	var updated struct {
		SubscriptionTargets []struct {
			Channel string `json:"channel"`
		} `json:"subscription_targets"`
		ProtectContent  bool   `json:"protect_content"`
		WatchButtonText string `json:"watch_button_text"`
	}
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &updated)
	require.Len(t, updated.SubscriptionTargets, 2)
	assert.Equal(t, "@chA", updated.SubscriptionTargets[0].Channel)
	assert.True(t, updated.ProtectContent)
	assert.Equal(t, mediagate.DefaultWatchButtonText, updated.WatchButtonText)
}
