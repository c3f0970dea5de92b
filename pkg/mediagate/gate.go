package mediagate

import (
	"context"
	"log/slog"
)

// CheckMembership evaluates whether a user satisfies every configured
// subscription target. The evaluation is pure and read-only: it reads the
// current target list and queries live platform status on every call, so a
// user-triggered retry always sees membership changes. An empty target
// list allows everyone.
func (s *service) CheckMembership(ctx context.Context, userID int64) (*GateResult, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	return s.evaluateGate(ctx, userID, settings.SubscriptionTargets), nil
}

// evaluateGate classifies each target as joined, not joined, or unknown.
// Unknown folds into not joined unless the gate is configured fail-open;
// a cached or optimistic result here would defeat the gate the moment
// membership changes, so nothing is memoized.
func (s *service) evaluateGate(ctx context.Context, userID int64, targets []SubscriptionTarget) *GateResult {
	result := &GateResult{Allowed: true}

	for _, target := range targets {
		status, err := s.platform.QueryMembership(ctx, target.Channel, userID)
		if err != nil {
			slog.Error("membership query failed", "channel", target.Channel, "user_id", userID, "err", err)
			status = MembershipUnknown
		}

		joined := status == MembershipJoined
		if status == MembershipUnknown && s.failOpen {
			joined = true
		}

		if !joined {
			result.Allowed = false
			result.Unmet = append(result.Unmet, target)
		}
	}

	return result
}
