package tracker

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"FundCalc/internal/calculator"
	"FundCalc/internal/model"
)

// Manager owns the watchlist of in-flight subscriptions with concurrency safety.
type Manager struct {
	mu       sync.Mutex
	state    *model.WatchState
	filePath string
}

// NewManager creates a Manager, loading or initializing state from disk.
func NewManager(filePath string) (*Manager, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}
	m := &Manager{state: state, filePath: filePath}
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

// Add validates the input as of the subscription day and appends it to the watchlist.
// The stored input is the normalized form; CurrentDay is left empty. A weekend
// subscription is accepted on the following Monday, which becomes day 1.
func (m *Manager) Add(name string, in model.CalcInput, subscribedOn time.Time) (model.Subscription, error) {
	in.CurrentDay = "1"
	params, err := calculator.Validate(in)
	if err != nil {
		return model.Subscription{}, err
	}
	stored := params.Input()
	stored.CurrentDay = ""

	name = strings.TrimSpace(name)
	if name == "" {
		name = "未命名"
	}
	sub := model.Subscription{
		ID:           uuid.NewString(),
		Name:         name,
		Input:        stored,
		SubscribedOn: nextTradingDay(dateOf(subscribedOn, subscribedOn.Location())),
		CreatedAt:    time.Now(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Subscriptions = append(m.state.Subscriptions, sub)
	if err := m.save(); err != nil {
		m.state.Subscriptions = m.state.Subscriptions[:len(m.state.Subscriptions)-1]
		return model.Subscription{}, fmt.Errorf("save watchlist: %w", err)
	}
	return sub, nil
}

// Remove deletes the subscription whose ID starts with idPrefix.
// The prefix must match exactly one entry.
func (m *Manager) Remove(idPrefix string) (model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, err := m.find(idPrefix)
	if err != nil {
		return model.Subscription{}, err
	}

	removed := m.state.Subscriptions[idx]
	m.state.Subscriptions = append(m.state.Subscriptions[:idx:idx], m.state.Subscriptions[idx+1:]...)
	if err := m.save(); err != nil {
		return model.Subscription{}, fmt.Errorf("save watchlist: %w", err)
	}
	return removed, nil
}

// Get returns the subscription whose ID starts with idPrefix.
func (m *Manager) Get(idPrefix string) (model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, err := m.find(idPrefix)
	if err != nil {
		return model.Subscription{}, err
	}
	return m.state.Subscriptions[idx], nil
}

func (m *Manager) find(idPrefix string) (int, error) {
	idPrefix = strings.TrimSpace(idPrefix)
	if idPrefix == "" {
		return -1, fmt.Errorf("empty id")
	}
	idx := -1
	for i, s := range m.state.Subscriptions {
		if strings.HasPrefix(s.ID, idPrefix) {
			if idx >= 0 {
				return -1, fmt.Errorf("id %q is ambiguous", idPrefix)
			}
			idx = i
		}
	}
	if idx < 0 {
		return -1, fmt.Errorf("subscription %q not found", idPrefix)
	}
	return idx, nil
}

// List returns a copy of the tracked subscriptions in insertion order.
func (m *Manager) List() []model.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Subscription, len(m.state.Subscriptions))
	copy(out, m.state.Subscriptions)
	return out
}

// MarkPushed records the time of the last scheduled push.
func (m *Manager) MarkPushed(at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.LastPushAt = at
	return m.save()
}

// GetState returns a copy of the current watchlist state.
func (m *Manager) GetState() model.WatchState {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := *m.state
	st.Subscriptions = append([]model.Subscription(nil), m.state.Subscriptions...)
	return st
}

func (m *Manager) save() error {
	return SaveState(m.filePath, m.state)
}

// CurrentDay returns the cycle day of a subscription as of now: day 1 is the
// subscription date and each following weekday adds one.
func CurrentDay(subscribedOn, now time.Time) int {
	start := dateOf(subscribedOn, now.Location())
	end := dateOf(now, now.Location())
	day := 1
	for d := start.AddDate(0, 0, 1); !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			day++
		}
	}
	return day
}

// InputFor returns the calculation input of a subscription as of now.
func InputFor(sub model.Subscription, now time.Time) model.CalcInput {
	in := sub.Input
	in.CurrentDay = model.RawValue(strconv.Itoa(CurrentDay(sub.SubscribedOn, now)))
	return in
}

// Evaluate runs the scenario engine for a subscription as of now.
func Evaluate(sub model.Subscription, now time.Time) (*model.CalcResult, error) {
	return calculator.Calculate(InputFor(sub, now))
}

// Matured reports whether the baseline settlement has completed.
func Matured(res *model.CalcResult) bool {
	return res.RemainingDays == 0
}

func dateOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// nextTradingDay returns d itself on a weekday, otherwise the following Monday.
func nextTradingDay(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, 2)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	}
	return d
}
