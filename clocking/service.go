package clocking

import (
	"context"
	"errors"
	"time"
)

// Query selects the window of a worked time calculation: either a named
// range or explicit bounds.
type Query struct {
	Range RangeSelector
	From  *time.Time
	To    *time.Time
}

func (q Query) Window(ref Reference) (Window, error) {
	if q.From != nil || q.To != nil {
		if q.From == nil || q.To == nil {
			return Window{}, errors.New("both from and to are required")
		}
		if q.To.Before(*q.From) {
			return Window{}, errors.New("to must not be before from")
		}
		return Window{From: *q.From, To: *q.To}, nil
	}

	sel := q.Range
	if sel == "" {
		sel = Today
	}
	return ResolveRange(sel, ref)
}

type Options struct {
	// ExcludeWeekends drops Saturdays and Sundays from histories.
	ExcludeWeekends bool
}

// Service is the entry point of the clocking core.
type Service struct {
	store      EventStore
	aggregator *Aggregator
	options    Options
}

func NewService(store EventStore, options Options) *Service {
	return &Service{
		store:      store,
		aggregator: NewAggregator(store),
		options:    options,
	}
}

func (s *Service) ValidateAction(ctx context.Context, userID string, action Action) error {
	last, err := s.store.GetLastEvent(ctx, userID)
	if err != nil {
		return err
	}
	return Validate(last, action)
}

// Clock validates action and records it at ref.Now.
func (s *Service) Clock(ctx context.Context, userID string, action Action, ref Reference) (ClockEvent, error) {
	if err := s.ValidateAction(ctx, userID, action); err != nil {
		return ClockEvent{}, err
	}

	ts := ref.Now.Truncate(time.Second)
	local := ts.In(ref.Location)
	if err := s.store.SaveEvent(ctx, userID, action, ts, &local); err != nil {
		return ClockEvent{}, err
	}

	return ClockEvent{UserID: userID, Action: action, Timestamp: ts, LocalTimestamp: &local}, nil
}

func (s *Service) CalculateWorkedTime(ctx context.Context, userID string, q Query, ref Reference) (WorkedDuration, error) {
	w, err := q.Window(ref)
	if err != nil {
		return 0, err
	}
	return s.aggregator.WorkedTime(ctx, userID, w, ref)
}

func (s *Service) History(ctx context.Context, userID string, sel RangeSelector, ref Reference) (History, error) {
	w, err := ResolveRange(sel, ref)
	if err != nil {
		return History{}, err
	}
	return s.aggregator.History(ctx, userID, w, ref, s.options.ExcludeWeekends)
}

// ClockHistory lists the raw events of the selected range.
func (s *Service) ClockHistory(ctx context.Context, userID string, sel RangeSelector, ref Reference) ([]ClockEvent, error) {
	w, err := ResolveRange(sel, ref)
	if err != nil {
		return nil, err
	}
	return s.store.GetEventsInRange(ctx, userID, w.From, w.To)
}

// LastEvent is the most recent clock action of the user, nil when there is
// none.
func (s *Service) LastEvent(ctx context.Context, userID string) (*ClockEvent, error) {
	return s.store.GetLastEvent(ctx, userID)
}
