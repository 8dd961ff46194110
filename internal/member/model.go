package member

import (
	"gymops/internal/subscription"
	"gymops/internal/user"
)

// CodeLookup is what the front desk sees after scanning a member code,
// before renewing. Current is nil when no window covers today.
type CodeLookup struct {
	Member  *user.User                 `json:"member"`
	Current *subscription.Subscription `json:"currentSubscription"`
}

// Details is a member's profile with their whole ledger, newest first.
type Details struct {
	Member        *user.User                  `json:"member"`
	Subscriptions []subscription.Subscription `json:"subscriptions"`
}
