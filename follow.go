package threadly

import "context"

// FollowState is the visible follow relationship with one user.
type FollowState struct {
	Following bool
	Followers int
}

// ToggleFollow flips the relationship and adjusts the follower count the way
// the server will.
func ToggleFollow(s FollowState) FollowState {
	if s.Following {
		s.Followers--
	} else {
		s.Followers++
	}
	s.Following = !s.Following
	return s
}

// Follower is the optimistic mutation controller instantiated for following.
type Follower struct {
	api  FollowSender
	ctrl *MutationController[FollowState]
}

func NewFollower(api FollowSender, opts ...MutationOption[FollowState]) *Follower {
	return &Follower{
		api:  api,
		ctrl: NewMutationController(opts...),
	}
}

// Sync adopts a fresh authoritative state for a user, e.g. after loading a
// profile. Ignored while a toggle for the user is in flight.
func (f *Follower) Sync(userID string, state FollowState) {
	f.ctrl.Adopt(userID, state)
}

// State returns the currently visible relationship with a user.
func (f *Follower) State(userID string) (FollowState, bool) {
	return f.ctrl.Value(userID)
}

// Toggle flips the relationship locally and issues the follow request. The
// endpoint toggles server-side, so the same call serves follow and unfollow.
// Returns false when a toggle for the user is already in flight.
func (f *Follower) Toggle(ctx context.Context, userID string) bool {
	if userID == "" {
		return false
	}

	return f.ctrl.Apply(ctx, userID,
		ToggleFollow,
		func(ctx context.Context) error { return f.api.FollowUser(ctx, userID) },
	)
}
