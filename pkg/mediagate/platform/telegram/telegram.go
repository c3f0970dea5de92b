package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ryanekas417-dev/botenak2/pkg/mediagate"
)

const defaultAPIBase = "https://api.telegram.org"

// Config options for the Telegram Bot API client
type Config struct {
	Token   string        // Bot token
	APIBase string        // Optional override for the Bot API base URL
	Timeout time.Duration // HTTP timeout (default: 30s)
}

// Client implements the mediagate.Platform interface against the Telegram
// Bot API. Payload references are Telegram file IDs; channels are chat IDs
// or @usernames.
type Client struct {
	token   string
	apiBase string
	http    *http.Client
}

// New creates a new Telegram Bot API client
func New(config Config) (*Client, error) {
	if config.Token == "" {
		return nil, errors.New("bot token is required")
	}
	if config.APIBase == "" {
		config.APIBase = defaultAPIBase
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &Client{
		token:   config.Token,
		apiBase: strings.TrimRight(config.APIBase, "/"),
		http:    &http.Client{Timeout: config.Timeout},
	}, nil
}

// apiResponse is the Bot API envelope
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
	ErrorCode   int             `json:"error_code"`
}

// call performs one Bot API method call and unmarshals the result.
func (c *Client) call(ctx context.Context, method string, params url.Values, result interface{}) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.token, method)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !envelope.OK {
		return fmt.Errorf("%s: %s (code %d)", method, envelope.Description, envelope.ErrorCode)
	}

	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}
	return nil
}

// sendMethodForKind maps a media kind to its Bot API send method and
// payload field.
func sendMethodForKind(kind mediagate.MediaKind) (method, field string, err error) {
	switch kind {
	case mediagate.KindImage:
		return "sendPhoto", "photo", nil
	case mediagate.KindVideo:
		return "sendVideo", "video", nil
	case mediagate.KindDocument:
		return "sendDocument", "document", nil
	case mediagate.KindAnimation:
		return "sendAnimation", "animation", nil
	}
	return "", "", mediagate.ErrInvalidKind
}

// inlineButton renders a single-button inline keyboard.
func inlineButton(text, buttonURL string) string {
	markup := map[string]interface{}{
		"inline_keyboard": [][]map[string]string{
			{{"text": text, "url": buttonURL}},
		},
	}
	data, _ := json.Marshal(markup)
	return string(data)
}

// QueryMembership reports the user's live status in a channel via
// getChatMember. Statuses left and kicked are not joined; any query
// failure surfaces as an error so the gate can classify it unknown.
func (c *Client) QueryMembership(ctx context.Context, channel string, userID int64) (mediagate.MembershipStatus, error) {
	params := url.Values{}
	params.Set("chat_id", channel)
	params.Set("user_id", strconv.FormatInt(userID, 10))

	var member struct {
		Status string `json:"status"`
	}
	if err := c.call(ctx, "getChatMember", params, &member); err != nil {
		return mediagate.MembershipUnknown, &mediagate.PlatformError{Op: "query_membership", Channel: channel, Err: err}
	}

	switch member.Status {
	case "creator", "administrator", "member", "restricted":
		return mediagate.MembershipJoined, nil
	default: // left, kicked
		return mediagate.MembershipNotJoined, nil
	}
}

// StorePayload re-sends the payload by file ID into the backup channel
// with the given caption, and returns the resulting message ID as the
// backup reference.
func (c *Client) StorePayload(ctx context.Context, channel string, payloadRef string, kind mediagate.MediaKind, caption string) (string, error) {
	method, field, err := sendMethodForKind(kind)
	if err != nil {
		return "", &mediagate.PlatformError{Op: "store_payload", Channel: channel, Err: err}
	}

	params := url.Values{}
	params.Set("chat_id", channel)
	params.Set(field, payloadRef)
	params.Set("caption", caption)

	var message struct {
		MessageID int64 `json:"message_id"`
	}
	if err := c.call(ctx, method, params, &message); err != nil {
		return "", &mediagate.PlatformError{Op: "store_payload", Channel: channel, Err: err}
	}

	return strconv.FormatInt(message.MessageID, 10), nil
}

// DeliverPayload sends the payload by file ID to a user chat.
func (c *Client) DeliverPayload(ctx context.Context, userID int64, payloadRef string, kind mediagate.MediaKind, opts mediagate.DeliverOptions) error {
	method, field, err := sendMethodForKind(kind)
	if err != nil {
		return &mediagate.PlatformError{Op: "deliver_payload", Err: err}
	}

	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(userID, 10))
	params.Set(field, payloadRef)
	if opts.Caption != "" {
		params.Set("caption", opts.Caption)
	}
	if opts.ProtectContent {
		params.Set("protect_content", "true")
	}
	if opts.ButtonText != "" && opts.ButtonURL != "" {
		params.Set("reply_markup", inlineButton(opts.ButtonText, opts.ButtonURL))
	}

	if err := c.call(ctx, method, params, nil); err != nil {
		return &mediagate.PlatformError{Op: "deliver_payload", Err: err}
	}
	return nil
}

// PostAnnouncement posts the cover image with caption and a deep-link
// button to the public channel.
func (c *Client) PostAnnouncement(ctx context.Context, channel string, coverRef string, caption string, link string) error {
	params := url.Values{}
	params.Set("chat_id", channel)
	params.Set("photo", coverRef)
	params.Set("caption", caption)
	params.Set("reply_markup", inlineButton(caption, link))

	if err := c.call(ctx, "sendPhoto", params, nil); err != nil {
		return &mediagate.PlatformError{Op: "post_announcement", Channel: channel, Err: err}
	}
	return nil
}
