package clocking

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type Action string

const (
	In     Action = "in"
	Pause  Action = "pause"
	Return Action = "return"
	Out    Action = "out"
)

// Actions lists every clock action in session order.
var Actions = []Action{In, Pause, Return, Out}

// transitions holds the only legal successors of each last action.
var transitions = map[Action][]Action{
	In:     {Pause, Out},
	Pause:  {Return},
	Return: {Pause, Out},
	Out:    {In},
}

func ParseAction(s string) (Action, error) {
	action := Action(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := transitions[action]; !ok {
		return "", fmt.Errorf("unknown clock action %q", s)
	}
	return action, nil
}

func (a Action) Upper() string {
	return strings.ToUpper(string(a))
}

// opensWork is true for actions that start an active working interval.
func (a Action) opensWork() bool {
	return a == In || a == Return
}

// closesWork is true for actions that end an active working interval.
func (a Action) closesWork() bool {
	return a == Pause || a == Out
}

// ClockEvent is a single timestamped action of a user.
type ClockEvent struct {
	UserID    string
	Action    Action
	Timestamp time.Time
	// LocalTimestamp is the wall clock seen by the user's client. Only the
	// editing API reads it.
	LocalTimestamp *time.Time
}

// AllowedActions returns the actions a user may clock after last.
func AllowedActions(last *ClockEvent) []Action {
	if last == nil {
		return []Action{In}
	}
	return slices.Clone(transitions[last.Action])
}

// Validate decides whether proposed is a legal continuation of the user's
// event sequence ending in last. A nil last means the user never clocked.
func Validate(last *ClockEvent, proposed Action) error {
	if last == nil {
		if proposed != In {
			return &NoPriorRecordError{Proposed: proposed}
		}
		return nil
	}

	if !slices.Contains(transitions[last.Action], proposed) {
		return &IllegalTransitionError{
			Last:     last.Action,
			Proposed: proposed,
			Allowed:  AllowedActions(last),
		}
	}
	return nil
}
