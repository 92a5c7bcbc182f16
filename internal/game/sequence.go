package game

import "github.com/SireeshLimbu/StoryTrail/internal/storytrail"

// alwaysUnlockedThrough is the highest sequence position that is unlocked
// from the start. New players see the first two waypoints immediately
// without solving anything.
const alwaysUnlockedThrough = 2

// StateOf derives the progression state of one waypoint. The done set holds
// waypoint ids the player has solved; all must contain every waypoint of the
// same trail so the predecessor can be found.
func StateOf(w storytrail.Waypoint, all []storytrail.Waypoint, done map[string]bool) storytrail.WaypointState {
	if done[w.ID] {
		return storytrail.StateCompleted
	}
	if w.SequenceOrder <= alwaysUnlockedThrough {
		return storytrail.StateUnlocked
	}
	for _, prev := range all {
		if prev.TrailID == w.TrailID && prev.SequenceOrder == w.SequenceOrder-1 {
			if done[prev.ID] {
				return storytrail.StateUnlocked
			}
			return storytrail.StateLocked
		}
	}
	// Gap in the sequence: no predecessor to solve, stay locked.
	return storytrail.StateLocked
}

// DeriveStates maps each waypoint id to its state for one player.
func DeriveStates(all []storytrail.Waypoint, done map[string]bool) map[string]storytrail.WaypointState {
	states := make(map[string]storytrail.WaypointState, len(all))
	for _, w := range all {
		states[w.ID] = StateOf(w, all, done)
	}
	return states
}

// EndWaypoint returns the waypoint flagged as the trail's terminal stop, or
// nil if none is marked.
func EndWaypoint(all []storytrail.Waypoint) *storytrail.Waypoint {
	for i := range all {
		if all[i].IsEnd {
			return &all[i]
		}
	}
	return nil
}

// TrailFinished reports whether the player has finished the trail: the end
// waypoint is solved, or, when no waypoint is marked terminal, every
// non-intro waypoint is.
func TrailFinished(all []storytrail.Waypoint, done map[string]bool) bool {
	if end := EndWaypoint(all); end != nil {
		return done[end.ID]
	}
	puzzles := 0
	for _, w := range all {
		if w.IsIntro {
			continue
		}
		puzzles++
		if !done[w.ID] {
			return false
		}
	}
	return puzzles > 0
}
