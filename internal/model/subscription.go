package model

import "time"

// Subscription is a fund purchase tracked until it becomes sellable.
// CurrentDay is derived from SubscribedOn at evaluation time and is never stored.
type Subscription struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Input        CalcInput `json:"input"`
	SubscribedOn time.Time `json:"subscribed_on"`
	CreatedAt    time.Time `json:"created_at"`
}

// WatchState is the persisted watchlist.
type WatchState struct {
	Subscriptions []Subscription `json:"subscriptions"`
	LastPushAt    time.Time      `json:"last_push_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
