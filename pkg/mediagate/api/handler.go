package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/ryanekas417-dev/botenak2/pkg/mediagate"
)

// Handler handles HTTP requests for the mediagate service
type Handler struct {
	service   mediagate.Service
	tokenAuth *jwtauth.JWTAuth
}

// NewHandler creates a new handler. Admin routes are protected with
// HS256-signed JWTs carrying an admin_id claim.
func NewHandler(service mediagate.Service, jwtSecret string) *Handler {
	return &Handler{
		service:   service,
		tokenAuth: jwtauth.New("HS256", []byte(jwtSecret), nil),
	}
}

// TokenAuth exposes the JWT context for token minting in tooling and tests.
func (h *Handler) TokenAuth() *jwtauth.JWTAuth {
	return h.tokenAuth
}

// Routes returns the routes for the mediagate API
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	// Public access path
	r.Get("/launch", h.Launch)
	r.Post("/access", h.Access)
	r.Post("/donations", h.SubmitDonation)

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(h.tokenAuth))
		r.Use(jwtauth.Authenticator)

		r.Post("/publish/upload", h.BeginUpload)
		r.Post("/publish/title", h.SetTitle)
		r.Post("/publish/cover", h.CommitCover)
		r.Post("/publish/cancel", h.CancelPublish)
		r.Get("/publish/session", h.GetSession)

		r.Get("/donations", h.ListDonations)
		r.Post("/donations/{id}/approve", h.ApproveDonation)
		r.Post("/donations/{id}/reject", h.RejectDonation)

		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.UpdateSettings)
	})

	return r
}

// adminID extracts the admin identity from the verified JWT claims.
func (h *Handler) adminID(r *http.Request) (int64, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return 0, err
	}
	id, ok := claims["admin_id"].(float64)
	if !ok {
		return 0, errors.New("admin_id claim missing")
	}
	return int64(id), nil
}

// AccessRequest is the request body for resolving an access request
type AccessRequest struct {
	UserID int64  `json:"user_id"`
	Code   string `json:"code,omitempty"`
}

// JoinPrompt is one actionable join affordance for an unmet target
type JoinPrompt struct {
	Channel string `json:"channel"`
}

// AccessResponse is the response body for an access request
type AccessResponse struct {
	Outcome     string                 `json:"outcome"`
	Text        string                 `json:"text,omitempty"`
	JoinPrompts []JoinPrompt           `json:"join_prompts,omitempty"`
	JoinLink    string                 `json:"join_link,omitempty"`
	Retry       bool                   `json:"retry,omitempty"`
	Record      *mediagate.MediaRecord `json:"record,omitempty"`
}

// Access resolves an inbound access request
func (h *Handler) Access(w http.ResponseWriter, r *http.Request) {
	var req AccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.resolve(w, r, mediagate.AccessRequest{UserID: req.UserID, Code: req.Code})
}

// Launch resolves a deep-link launch URI; the code is taken verbatim from
// the start parameter.
func (h *Handler) Launch(w http.ResponseWriter, r *http.Request) {
	userID, err := parseInt64(r.URL.Query().Get("user_id"))
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	h.resolve(w, r, mediagate.AccessRequest{
		UserID: userID,
		Code:   r.URL.Query().Get("start"),
	})
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, req mediagate.AccessRequest) {
	result, err := h.service.Resolve(r.Context(), req)
	if err != nil {
		slog.Error("failed to resolve access request", "user_id", req.UserID, "err", err)
		http.Error(w, "failed to resolve request", http.StatusInternalServerError)
		return
	}

	resp := AccessResponse{Outcome: string(result.Outcome), Text: result.Text}

	switch result.Outcome {
	case mediagate.OutcomeDenied:
		for _, target := range result.Gate.Unmet {
			resp.JoinPrompts = append(resp.JoinPrompts, JoinPrompt{Channel: target.Channel})
		}
		resp.JoinLink = result.JoinLink
		// The retry affordance re-issues this same request.
		resp.Retry = true
		render.Status(r, http.StatusForbidden)
	case mediagate.OutcomeNotFound:
		resp.Text = "content not found"
		render.Status(r, http.StatusNotFound)
	case mediagate.OutcomeDelivered:
		resp.Record = result.Record
	}

	render.JSON(w, r, resp)
}

// UploadRequest is the request body for starting a publish session
type UploadRequest struct {
	PayloadRef string `json:"payload_ref"`
	Kind       string `json:"kind"`
}

// SessionResponse is the response body for a publish session
type SessionResponse struct {
	AdminID    int64  `json:"admin_id"`
	State      string `json:"state"`
	PayloadRef string `json:"payload_ref,omitempty"`
	Kind       string `json:"kind,omitempty"`
	Title      string `json:"title,omitempty"`
}

func sessionResponse(session *mediagate.PublishSession) SessionResponse {
	return SessionResponse{
		AdminID:    session.AdminID,
		State:      string(session.State),
		PayloadRef: session.PayloadRef,
		Kind:       string(session.Kind),
		Title:      session.Title,
	}
}

// BeginUpload starts (or replaces) a publish session
func (h *Handler) BeginUpload(w http.ResponseWriter, r *http.Request) {
	adminID, err := h.adminID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	session, err := h.service.BeginUpload(r.Context(), mediagate.UploadRequest{
		AdminID:    adminID,
		PayloadRef: req.PayloadRef,
		Kind:       mediagate.MediaKind(req.Kind),
	})
	if err != nil {
		h.publishError(w, r, "begin upload", err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, sessionResponse(session))
}

// TitleRequest is the request body for the title step
type TitleRequest struct {
	Title string `json:"title"`
}

// SetTitle advances the wizard from the title step to the cover step
func (h *Handler) SetTitle(w http.ResponseWriter, r *http.Request) {
	adminID, err := h.adminID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var req TitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	session, err := h.service.SetTitle(r.Context(), adminID, req.Title)
	if err != nil {
		h.publishError(w, r, "set title", err)
		return
	}

	render.JSON(w, r, sessionResponse(session))
}

// CoverRequest is the request body for the commit step
type CoverRequest struct {
	CoverRef string `json:"cover_ref"`
}

// PublishResponse is the response body for a committed publish
type PublishResponse struct {
	Code                string `json:"code"`
	DeepLink            string `json:"deep_link"`
	AnnouncementWarning string `json:"announcement_warning,omitempty"`
}

// CommitCover executes the commit step and reports the deep link
func (h *Handler) CommitCover(w http.ResponseWriter, r *http.Request) {
	adminID, err := h.adminID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var req CoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.CommitCover(r.Context(), adminID, req.CoverRef)
	if err != nil {
		h.publishError(w, r, "commit cover", err)
		return
	}

	resp := PublishResponse{
		Code:     result.Record.Code,
		DeepLink: result.DeepLink,
	}
	if result.AnnouncementErr != nil {
		// Partial success: the record is committed and retrievable.
		resp.AnnouncementWarning = result.AnnouncementErr.Error()
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, resp)
}

// CancelPublish discards the admin's session
func (h *Handler) CancelPublish(w http.ResponseWriter, r *http.Request) {
	adminID, err := h.adminID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	if err := h.service.CancelPublish(r.Context(), adminID); err != nil {
		h.publishError(w, r, "cancel publish", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetSession returns the admin's current wizard state
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	adminID, err := h.adminID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	session, err := h.service.GetSession(r.Context(), adminID)
	if err != nil {
		h.publishError(w, r, "get session", err)
		return
	}

	render.JSON(w, r, sessionResponse(session))
}

// DonationRequest is the request body for a non-admin submission
type DonationRequest struct {
	UserID     int64  `json:"user_id"`
	PayloadRef string `json:"payload_ref"`
	Kind       string `json:"kind"`
}

// SubmitDonation accepts a non-admin submission
func (h *Handler) SubmitDonation(w http.ResponseWriter, r *http.Request) {
	var req DonationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	donation, err := h.service.SubmitDonation(r.Context(), mediagate.DonationRequest{
		UserID:     req.UserID,
		PayloadRef: req.PayloadRef,
		Kind:       mediagate.MediaKind(req.Kind),
	})
	if err != nil {
		slog.Error("failed to submit donation", "user_id", req.UserID, "err", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, donation)
}

// ListDonations returns the pending submissions
func (h *Handler) ListDonations(w http.ResponseWriter, r *http.Request) {
	donations, err := h.service.ListDonations(r.Context())
	if err != nil {
		slog.Error("failed to list donations", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, donations)
}

// ApproveDonation re-enters the publish pipeline with the donated payload
func (h *Handler) ApproveDonation(w http.ResponseWriter, r *http.Request) {
	adminID, err := h.adminID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	donationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid donation ID", http.StatusBadRequest)
		return
	}

	session, err := h.service.ApproveDonation(r.Context(), adminID, donationID)
	if err != nil {
		h.publishError(w, r, "approve donation", err)
		return
	}

	render.JSON(w, r, sessionResponse(session))
}

// RejectDonation discards a submission
func (h *Handler) RejectDonation(w http.ResponseWriter, r *http.Request) {
	adminID, err := h.adminID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	donationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid donation ID", http.StatusBadRequest)
		return
	}

	if err := h.service.RejectDonation(r.Context(), adminID, donationID); err != nil {
		h.publishError(w, r, "reject donation", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetSettings returns the typed settings view
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.GetSettings(r.Context())
	if err != nil {
		slog.Error("failed to load settings", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, settings)
}

// UpdateSettingsRequest is the request body for partial settings updates
type UpdateSettingsRequest struct {
	SubscriptionTargets *[]string `json:"subscription_targets,omitempty"`
	BackupChannel       *string   `json:"backup_channel,omitempty"`
	PublicChannel       *string   `json:"public_channel,omitempty"`
	WatchButtonText     *string   `json:"watch_button_text,omitempty"`
	JoinLink            *string   `json:"join_link,omitempty"`
	StartText           *string   `json:"start_text,omitempty"`
	ProtectContent      *bool     `json:"protect_content,omitempty"`
}

// UpdateSettings applies partial settings updates
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	update := mediagate.UpdateSettingsRequest{
		BackupChannel:   req.BackupChannel,
		PublicChannel:   req.PublicChannel,
		WatchButtonText: req.WatchButtonText,
		JoinLink:        req.JoinLink,
		StartText:       req.StartText,
		ProtectContent:  req.ProtectContent,
	}
	if req.SubscriptionTargets != nil {
		targets := make([]mediagate.SubscriptionTarget, 0, len(*req.SubscriptionTargets))
		for _, channel := range *req.SubscriptionTargets {
			targets = append(targets, mediagate.SubscriptionTarget{Channel: channel})
		}
		update.SubscriptionTargets = &targets
	}

	settings, err := h.service.UpdateSettings(r.Context(), update)
	if err != nil {
		slog.Error("failed to update settings", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, settings)
}

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// publishError maps pipeline errors to HTTP status codes
func (h *Handler) publishError(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.Error("publish operation failed", "op", op, "err", err)

	switch {
	case errors.Is(err, mediagate.ErrNotAuthorized):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, mediagate.ErrUnexpectedStep):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, mediagate.ErrNoActiveSession),
		errors.Is(err, mediagate.ErrEmptyTitle),
		errors.Is(err, mediagate.ErrInvalidKind),
		errors.Is(err, mediagate.ErrDonationNotFound):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, mediagate.ErrBackupWriteFailed):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
