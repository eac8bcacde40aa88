package letterbox

import (
	"context"
	"fmt"
	"math"

	"github.com/mitchellh/mapstructure"
)

// PluginID is the key the remote configuration store files settings under.
const PluginID = "LetterboxBlur"

// DefaultBlurStrength is used when no valid strength is configured.
const DefaultBlurStrength = 15.0

// Settings are the per-session blur settings. They are loaded once at
// attach time and never reloaded.
type Settings struct {
	BlurStrength float64 `mapstructure:"blurStrength"`
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{BlurStrength: DefaultBlurStrength}
}

// ConfigStore returns the persisted settings of a plugin.
type ConfigStore interface {
	Configuration(ctx context.Context, pluginID string) (map[string]any, error)
}

// MapConfigStore is a ConfigStore backed by an in-memory map of plugin ID
// to settings.
type MapConfigStore map[string]map[string]any

// Configuration implements ConfigStore. Unknown plugins yield an empty map.
func (m MapConfigStore) Configuration(_ context.Context, pluginID string) (map[string]any, error) {
	if cfg, ok := m[pluginID]; ok {
		return cfg, nil
	}
	return map[string]any{}, nil
}

// DecodeSettings merges raw over the defaults. Values are weakly typed, so
// "20" and 20 both decode. A strength that is not a positive finite number
// falls back to DefaultBlurStrength.
func DecodeSettings(raw map[string]any) (Settings, error) {
	s := DefaultSettings()
	if len(raw) == 0 {
		return s, nil
	}
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Metadata:         &md,
		Result:           &s,
	})
	if err != nil {
		return DefaultSettings(), fmt.Errorf("settings decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return DefaultSettings(), fmt.Errorf("decode settings: %w", err)
	}
	if len(md.Unused) > 0 {
		Logger().Debug("letterbox: ignoring unknown settings", "keys", md.Unused)
	}
	if s.BlurStrength <= 0 || math.IsNaN(s.BlurStrength) || math.IsInf(s.BlurStrength, 0) {
		s.BlurStrength = DefaultBlurStrength
	}
	return s, nil
}

// LoadSettings fetches and decodes the plugin settings. Any fetch or decode
// failure is logged and the defaults are returned; the error is returned
// for callers that want to count it.
func LoadSettings(ctx context.Context, store ConfigStore) (Settings, error) {
	if store == nil {
		return DefaultSettings(), nil
	}
	raw, err := store.Configuration(ctx, PluginID)
	if err != nil {
		Logger().Warn("letterbox: loading settings failed, using defaults", "err", err)
		return DefaultSettings(), fmt.Errorf("fetch %s settings: %w", PluginID, err)
	}
	s, err := DecodeSettings(raw)
	if err != nil {
		Logger().Warn("letterbox: invalid settings, using defaults", "err", err)
		return s, err
	}
	return s, nil
}
