package clocking

import (
	"context"
	"time"
)

// EventStore is the persistence the clocking core consumes.
type EventStore interface {
	// GetLastEvent returns the most recent event of the user or nil when the
	// user never clocked.
	GetLastEvent(ctx context.Context, userID string) (*ClockEvent, error)
	// GetEventsInRange returns events with from <= timestamp <= to in
	// ascending timestamp order.
	GetEventsInRange(ctx context.Context, userID string, from, to time.Time) ([]ClockEvent, error)
	SaveEvent(ctx context.Context, userID string, action Action, timestamp time.Time, localTimestamp *time.Time) error
}

type Aggregator struct {
	store EventStore
}

func NewAggregator(store EventStore) *Aggregator {
	return &Aggregator{store: store}
}

// WorkedTime sums the active intervals of the user inside w. Sessions left
// open at the edges of the window are closed at local midnight, now or the
// end of the day of the last event.
func (a *Aggregator) WorkedTime(ctx context.Context, userID string, w Window, ref Reference) (WorkedDuration, error) {
	events, err := a.store.GetEventsInRange(ctx, userID, w.From, w.To)
	if err != nil {
		return 0, err
	}

	if len(events) == 0 {
		return a.carriedOver(ctx, userID, w, ref)
	}

	var total time.Duration

	first := events[0]
	if first.Action.closesWork() {
		total += first.Timestamp.Sub(StartOfDay(first.Timestamp, ref.Location))
	}

	for i := 0; i+1 < len(events); i++ {
		if events[i].Action.opensWork() && events[i+1].Action.closesWork() {
			total += events[i+1].Timestamp.Sub(events[i].Timestamp)
		}
	}

	last := events[len(events)-1]
	if last.Action.opensWork() {
		if SameDay(last.Timestamp, ref.Now, ref.Location) {
			total += ref.Now.Sub(last.Timestamp)
		} else {
			total += EndOfDay(last.Timestamp, ref.Location).Sub(last.Timestamp)
		}
	}

	return FromDuration(total), nil
}

// carriedOver handles a window without events: when the latest event of the
// previous LookbackDays days left a session open, the time elapsed today counts.
func (a *Aggregator) carriedOver(ctx context.Context, userID string, w Window, ref Reference) (WorkedDuration, error) {
	prior, err := a.store.GetEventsInRange(ctx, userID, w.From.AddDate(0, 0, -LookbackDays), w.From)
	if err != nil {
		return 0, err
	}
	if len(prior) == 0 {
		return 0, nil
	}

	if latest := prior[len(prior)-1]; latest.Action.opensWork() {
		return FromDuration(ref.Now.Sub(ref.Today())), nil
	}
	return 0, nil
}

type DayTotal struct {
	Date   time.Time
	Worked WorkedDuration
}

type History struct {
	From  time.Time
	To    time.Time
	Days  []DayTotal
	Total WorkedDuration
}

// History evaluates every date of w on its own [00:00:00, 23:59:59] window.
// Total adds the per-day values as rendered, so it always equals the sum of
// the displayed days.
func (a *Aggregator) History(ctx context.Context, userID string, w Window, ref Reference, excludeWeekends bool) (History, error) {
	history := History{From: w.From, To: w.To}

	for _, day := range Days(w, ref.Location, excludeWeekends) {
		worked, err := a.WorkedTime(ctx, userID, DayWindow(day, ref.Location), ref)
		if err != nil {
			return History{}, err
		}
		history.Days = append(history.Days, DayTotal{Date: day, Worked: worked})
		history.Total += worked.TruncateMinutes()
	}

	return history, nil
}
