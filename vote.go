package threadly

import "context"

// VoteType is the ballot a user can hold on a post.
type VoteType string

const (
	VoteUp   VoteType = "UP"
	VoteDown VoteType = "DOWN"
	VoteNone VoteType = ""
)

// VoteState is the visible vote tally for one post, exactly one of three
// ballots per target.
type VoteState struct {
	Up   int
	Down int
	Vote VoteType
}

func (s VoteState) Score() int {
	return s.Up - s.Down
}

// ApplyVote applies the same toggle rule the server uses: selecting the
// current choice again clears it; selecting the other choice swaps it,
// adjusting both counters in one step.
func ApplyVote(s VoteState, choice VoteType) VoteState {
	if choice == VoteNone {
		return s
	}

	if s.Vote == choice {
		if choice == VoteUp {
			s.Up--
		} else {
			s.Down--
		}
		s.Vote = VoteNone
		return s
	}

	switch s.Vote {
	case VoteUp:
		s.Up--
	case VoteDown:
		s.Down--
	}

	if choice == VoteUp {
		s.Up++
	} else {
		s.Down++
	}
	s.Vote = choice

	return s
}

// Voter is the optimistic mutation controller instantiated for voting.
type Voter struct {
	api  VoteSender
	ctrl *MutationController[VoteState]
}

func NewVoter(api VoteSender, opts ...MutationOption[VoteState]) *Voter {
	return &Voter{
		api:  api,
		ctrl: NewMutationController(opts...),
	}
}

// Sync adopts a fresh authoritative tally for a post, e.g. after a feed
// refresh. Ignored while a vote for the post is in flight.
func (v *Voter) Sync(postID string, state VoteState) {
	v.ctrl.Adopt(postID, state)
}

// State returns the currently visible tally for a post.
func (v *Voter) State(postID string) (VoteState, bool) {
	return v.ctrl.Value(postID)
}

// Cast applies the toggle locally and issues the vote request. Returns false
// when a vote for the post is already in flight and this trigger was dropped.
func (v *Voter) Cast(ctx context.Context, postID string, choice VoteType) bool {
	if choice != VoteUp && choice != VoteDown {
		return false
	}

	return v.ctrl.Apply(ctx, postID,
		func(s VoteState) VoteState { return ApplyVote(s, choice) },
		func(ctx context.Context) error { return v.api.Vote(ctx, postID, choice) },
	)
}
