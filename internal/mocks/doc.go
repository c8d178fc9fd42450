// Package mocks provides centralized test doubles for the store interfaces.
//
// Each mock wraps a real store (usually one from internal/platform/memory)
// and forwards every call to it unless the matching function field is set.
// This keeps fixtures realistic while letting a test break one call:
//
//	cards := &mocks.CardStore{
//	    Inner: memory.NewCardStore(nil, nil),
//	    SaveFn: func(ctx context.Context, c domain.Card) (domain.Card, error) {
//	        return domain.Card{}, errors.New("disk full")
//	    },
//	}
//
// Calls are counted per method so tests can assert on store traffic.
package mocks
