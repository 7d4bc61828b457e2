package domain

import (
	"fmt"

	pkgerrors "graphlearn/pkg/errors"
)

// Vote is a viewer's rating of a graph: -1, 0 or 1.
type Vote int

const (
	VoteDown Vote = -1
	VoteNone Vote = 0
	VoteUp   Vote = 1
)

// VoteState is the viewer's vote together with the graph's counters.
// It is derived from the graph detail and never persisted on its own.
type VoteState struct {
	MyVote   Vote
	Likes    int
	Dislikes int
}

// Apply reconciles a click on the vote button for value.
//
// Clicking the current vote retracts it. Clicking the other direction moves
// the viewer's vote from one counter to the other. Counters never go below
// zero, so a stale triple from the server cannot produce negative numbers.
func (s VoteState) Apply(value Vote) (VoteState, error) {
	if value != VoteUp && value != VoteDown {
		return s, pkgerrors.NewValidationError(fmt.Sprintf("invalid vote value %d", value))
	}

	next := s
	if s.MyVote == value {
		next.decrement(value)
		next.MyVote = VoteNone
		return next, nil
	}

	if s.MyVote != VoteNone {
		next.decrement(s.MyVote)
	}
	next.increment(value)
	next.MyVote = value
	return next, nil
}

func (s *VoteState) increment(v Vote) {
	if v == VoteUp {
		s.Likes++
	} else {
		s.Dislikes++
	}
}

func (s *VoteState) decrement(v Vote) {
	if v == VoteUp {
		if s.Likes > 0 {
			s.Likes--
		}
		return
	}
	if s.Dislikes > 0 {
		s.Dislikes--
	}
}
