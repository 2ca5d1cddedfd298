package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

const (
	settingsFileName = "optimization_settings.json"
	presetsFileName  = "optimization_presets.json"
)

// Manager owns the current settings and the preset catalog, persisting both
// as JSON under a config directory. Builtin presets are seeded on every
// construction and never written to disk.
type Manager struct {
	configDir string

	mu      sync.Mutex
	current *OptimizationSettings
	presets map[string]*Preset
}

// NewManager creates a manager rooted at configDir, seeds the builtin
// presets, and loads any persisted settings and custom presets. Load
// failures fall back to defaults rather than failing construction.
func NewManager(configDir string) (*Manager, error) {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	m := &Manager{
		configDir: configDir,
		current:   Default(),
		presets:   make(map[string]*Preset),
	}
	for _, p := range builtinPresets() {
		m.presets[p.Name] = p
	}

	// Persisted state is best-effort: a corrupt or missing file means defaults
	_ = m.LoadSettings()
	_ = m.LoadPresets()

	return m, nil
}

func (m *Manager) settingsPath() string {
	return filepath.Join(m.configDir, settingsFileName)
}

func (m *Manager) presetsPath() string {
	return filepath.Join(m.configDir, presetsFileName)
}

// Current returns a copy of the current settings
func (m *Manager) Current() *OptimizationSettings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.Clone()
}

// SetCurrent replaces the current settings
func (m *Manager) SetCurrent(s *OptimizationSettings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s.Clone()
}

// SaveSettings writes the current settings to disk
func (m *Manager) SaveSettings() error {
	m.mu.Lock()
	data, err := json.MarshalIndent(m.current, "", "  ")
	m.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(m.settingsPath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// LoadSettings reads settings from disk. A missing file is not an error;
// the current settings stay at their defaults.
func (m *Manager) LoadSettings() error {
	data, err := os.ReadFile(m.settingsPath())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read settings file: %w", err)
	}

	loaded := Default()
	if err := json.Unmarshal(data, loaded); err != nil {
		return fmt.Errorf("failed to parse settings file: %w", err)
	}

	m.mu.Lock()
	m.current = loaded
	m.mu.Unlock()
	return nil
}

// Presets returns all presets sorted by name, builtins first
func (m *Manager) Presets() []*Preset {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Preset, 0, len(m.presets))
	for _, p := range m.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsBuiltin != out[j].IsBuiltin {
			return out[i].IsBuiltin
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Preset looks up a preset by name
func (m *Manager) Preset(name string) (*Preset, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.presets[name]
	return p, ok
}

// AddPreset registers a custom preset and persists the custom set.
// Builtin preset names cannot be shadowed.
func (m *Manager) AddPreset(p *Preset) error {
	m.mu.Lock()
	if existing, ok := m.presets[p.Name]; ok && existing.IsBuiltin {
		m.mu.Unlock()
		return fmt.Errorf("cannot replace builtin preset: %s", p.Name)
	}
	p.IsBuiltin = false
	m.presets[p.Name] = p
	m.mu.Unlock()

	return m.SavePresets()
}

// RemovePreset deletes a custom preset. Builtin presets cannot be removed.
func (m *Manager) RemovePreset(name string) error {
	m.mu.Lock()
	p, ok := m.presets[name]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	if p.IsBuiltin {
		m.mu.Unlock()
		return fmt.Errorf("cannot remove builtin preset: %s", name)
	}
	delete(m.presets, name)
	m.mu.Unlock()

	return m.SavePresets()
}

// ApplyPreset copies a preset's settings into the current settings
func (m *Manager) ApplyPreset(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.presets[name]
	if !ok {
		return fmt.Errorf("preset not found: %s", name)
	}
	m.current = p.Settings.Clone()
	return nil
}

// SavePresets writes custom presets (only) to disk
func (m *Manager) SavePresets() error {
	m.mu.Lock()
	custom := make(map[string]*Preset)
	for name, p := range m.presets {
		if !p.IsBuiltin {
			custom[name] = p
		}
	}
	m.mu.Unlock()

	data, err := json.MarshalIndent(custom, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal presets: %w", err)
	}
	if err := os.WriteFile(m.presetsPath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write presets file: %w", err)
	}
	return nil
}

// LoadPresets reads custom presets from disk and merges them in. Loaded
// presets are always marked non-builtin.
func (m *Manager) LoadPresets() error {
	data, err := os.ReadFile(m.presetsPath())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read presets file: %w", err)
	}

	loaded := make(map[string]*Preset)
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to parse presets file: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for name, p := range loaded {
		if existing, ok := m.presets[name]; ok && existing.IsBuiltin {
			continue
		}
		p.IsBuiltin = false
		if p.Settings == nil {
			p.Settings = Default()
		}
		m.presets[name] = p
	}
	return nil
}
