package worktime

import "time"

// memoKey identifies one remembered computation
type memoKey struct {
	fn       string
	identity string
	year     int
	month    time.Month
}

// memo remembers results for the lifetime of one engine, i.e. one report run.
// Entries are never invalidated; errors are not remembered.
type memo struct {
	entries map[memoKey]interface{}
}

func newMemo() *memo {
	return &memo{entries: make(map[memoKey]interface{})}
}

func remember[T any](m *memo, key memoKey, compute func() (T, error)) (T, error) {
	if v, ok := m.entries[key]; ok {
		return v.(T), nil
	}
	v, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}
	m.entries[key] = v
	return v, nil
}
