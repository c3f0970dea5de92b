package mediagate

import (
	"context"
	"errors"
	"log/slog"
)

// Resolve handles one inbound deep-link request. Identical (code,
// membership state) pairs produce identical observable outcomes; a
// user-triggered retry simply re-issues the same request through this
// path.
func (s *service) Resolve(ctx context.Context, req AccessRequest) (*ResolveResult, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	if req.Code == "" {
		return &ResolveResult{
			Outcome: OutcomeLanding,
			Text:    settings.StartText,
		}, nil
	}

	gate := s.evaluateGate(ctx, req.UserID, settings.SubscriptionTargets)
	if !gate.Allowed {
		if err := s.eventSink.AccessDenied(ctx, req.UserID, gate.Unmet); err != nil {
			slog.Error("access denied event failed", "user_id", req.UserID, "err", err)
		}
		return &ResolveResult{
			Outcome:  OutcomeDenied,
			Gate:     gate,
			JoinLink: settings.JoinLink,
		}, nil
	}

	record, err := s.repository.GetRecord(ctx, req.Code)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			// Terminal: never auto-retried.
			return &ResolveResult{Outcome: OutcomeNotFound, Gate: gate}, nil
		}
		return nil, err
	}

	opts := DeliverOptions{
		Caption:        record.Title,
		ButtonText:     settings.WatchButtonText,
		ButtonURL:      BuildDeepLink(s.linkBase, record.Code),
		ProtectContent: settings.ProtectContent,
	}
	if err := s.platform.DeliverPayload(ctx, req.UserID, record.PayloadRef, record.Kind, opts); err != nil {
		return nil, &PlatformError{Op: "deliver_payload", Err: err}
	}

	if err := s.eventSink.AccessGranted(ctx, req.UserID, record.Code); err != nil {
		slog.Error("access granted event failed", "user_id", req.UserID, "code", record.Code, "err", err)
	}

	return &ResolveResult{
		Outcome: OutcomeDelivered,
		Gate:    gate,
		Record:  record,
	}, nil
}
