package ui

import "github.com/bamsammich/pdd/internal/event"

// quietPresenter drains events and produces no output.
type quietPresenter struct{}

func (quietPresenter) Run(events <-chan event.Event) error {
	for range events { //nolint:revive // drain
	}
	return nil
}
