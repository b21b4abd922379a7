package feed

// maxTopReactions is how many reaction types a post summary shows
const maxTopReactions = 3

// ReactionState is the viewer-facing reaction summary of a post or comment
type ReactionState struct {
	UserReaction string
	Total        int
	Top          []string
}

// ApplyReaction returns the state after the viewer toggles reaction.
// Picking the current reaction removes it, picking another swaps it and
// picking one with none set adds it. The total moves by at most one.
func ApplyReaction(state ReactionState, reaction string) ReactionState {
	old := state.UserReaction
	unreacting := old == reaction

	next := ReactionState{Total: state.Total}
	if !unreacting {
		next.UserReaction = reaction
	}

	switch {
	case unreacting:
		next.Total = state.Total - 1
		if next.Total < 0 {
			next.Total = 0
		}
	case old == "":
		next.Total = state.Total + 1
	}

	top := make([]string, 0, len(state.Top)+1)
	if next.UserReaction != "" && !contains(state.Top, next.UserReaction) {
		top = append(top, next.UserReaction)
	}
	for _, r := range state.Top {
		if old != "" && r == old {
			continue
		}
		top = append(top, r)
	}
	if len(top) > maxTopReactions {
		top = top[:maxTopReactions]
	}
	next.Top = top

	return next
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
