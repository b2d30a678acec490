package config

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// Settings are viewer preferences that survive restarts. Simulation state is
// never stored here.
type Settings struct {
	Muted        bool  `yaml:"muted"`
	ShowLogPanel bool  `yaml:"showLogPanel"`
	WindowWidth  int   `yaml:"windowWidth"`
	WindowHeight int   `yaml:"windowHeight"`
	LastSeed     int64 `yaml:"lastSeed"`
}

// DefaultSettings returns the preferences used on first launch.
func DefaultSettings() *Settings {
	return &Settings{
		WindowWidth:  1280,
		WindowHeight: 720,
		LastSeed:     1,
	}
}

// Storage keys.
const (
	settingsObject   = "settings"
	settingsProperty = "viewer"
)

// SettingsManager loads and saves Settings through gdata. A nil gdata
// manager means settings live in memory only.
type SettingsManager struct {
	gdataManager *gdata.Manager
	settings     *Settings
}

// OpenStore opens the per-user data store for appName.
func OpenStore(appName string) (*gdata.Manager, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("failed to open settings store: %w", err)
	}
	return m, nil
}

// NewSettingsManager creates a manager and loads any saved settings. A load
// failure is logged and the defaults are used.
func NewSettingsManager(gdataManager *gdata.Manager) *SettingsManager {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}
	if err := sm.Load(); err != nil {
		log.Printf("[Settings] Warning: %v (using defaults)", err)
	}
	return sm
}

// Load reads saved settings, falling back to the defaults when none exist.
func (sm *SettingsManager) Load() error {
	if sm.gdataManager == nil {
		sm.settings = DefaultSettings()
		return nil
	}
	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}
	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}
	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	sm.settings = loaded
	return nil
}

// Save persists the current settings. Without a store it does nothing.
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}
	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// Persistent reports whether settings are backed by a store.
func (sm *SettingsManager) Persistent() bool { return sm.gdataManager != nil }

// Settings returns the current settings. Callers may modify the result and
// then call Save.
func (sm *SettingsManager) Settings() *Settings { return sm.settings }

// ToggleMute flips the mute preference and returns the new value.
func (sm *SettingsManager) ToggleMute() bool {
	sm.settings.Muted = !sm.settings.Muted
	return sm.settings.Muted
}

// ToggleLogPanel flips the log panel preference and returns the new value.
func (sm *SettingsManager) ToggleLogPanel() bool {
	sm.settings.ShowLogPanel = !sm.settings.ShowLogPanel
	return sm.settings.ShowLogPanel
}

// SetWindowSize records the last window size. Non-positive sizes are ignored.
func (sm *SettingsManager) SetWindowSize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	sm.settings.WindowWidth = w
	sm.settings.WindowHeight = h
}
