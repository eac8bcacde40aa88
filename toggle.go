package letterbox

import (
	"strconv"
	"sync"
)

// ToggleKey is the local storage key of the enable flag.
const ToggleKey = "letterboxBlurEnabled"

// ToggleStore is per-installation local storage holding string values.
type ToggleStore interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// MemoryToggleStore is a ToggleStore kept in memory.
type MemoryToggleStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryToggleStore returns an empty store.
func NewMemoryToggleStore() *MemoryToggleStore {
	return &MemoryToggleStore{values: make(map[string]string)}
}

// Get implements ToggleStore.
func (m *MemoryToggleStore) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements ToggleStore.
func (m *MemoryToggleStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Toggle labels.
var (
	EnabledLabel  = ToggleLabel{Icon: "🌫️", Title: "Disable Letterbox Blur", Opacity: 1}
	DisabledLabel = ToggleLabel{Icon: "🚫", Title: "Enable Letterbox Blur", Opacity: 0.6}
)

// Toggle is the user's enable flag. It defaults to enabled and is persisted
// as "true"/"false" under ToggleKey on every flip.
type Toggle struct {
	store   ToggleStore
	enabled bool
}

// RestoreToggle reads the persisted flag. A missing key, an unreadable
// store, or a nil store yield enabled. Any value other than "true" reads as
// disabled.
func RestoreToggle(store ToggleStore) *Toggle {
	t := &Toggle{store: store, enabled: true}
	if store == nil {
		return t
	}
	v, ok, err := store.Get(ToggleKey)
	if err != nil {
		Logger().Warn("letterbox: reading toggle state failed", "err", err)
		return t
	}
	if ok {
		t.enabled = v == "true"
	}
	return t
}

// Enabled reports the current flag.
func (t *Toggle) Enabled() bool { return t.enabled }

// Label returns the control label for the current flag.
func (t *Toggle) Label() ToggleLabel {
	if t.enabled {
		return EnabledLabel
	}
	return DisabledLabel
}

// Flip inverts the flag, persists it, and returns the new value. A failed
// write is logged; the in-memory flag still changes.
func (t *Toggle) Flip() bool {
	t.enabled = !t.enabled
	if t.store != nil {
		if err := t.store.Set(ToggleKey, strconv.FormatBool(t.enabled)); err != nil {
			Logger().Warn("letterbox: persisting toggle state failed", "err", err)
		}
	}
	return t.enabled
}
