package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ersonp/sheetkeeper/internal/domain/entities"
)

// SystemsConfig holds the rule-system templates (read/write).
// Keys are case-folded system names.
type SystemsConfig struct {
	Systems map[string]SystemEntry `yaml:"systems,omitempty"`
}

// SystemEntry is the ordered list of attributes a system's sheet asks for.
type SystemEntry struct {
	Attributes  []string `yaml:"attributes"`
	Description string   `yaml:"description,omitempty"`
}

// DefaultSystems returns the built-in system templates.
func DefaultSystems() *SystemsConfig {
	return &SystemsConfig{
		Systems: map[string]SystemEntry{
			"ordem paranormal": {
				Attributes: []string{"Classe", "Origem", "PV", "Sanidade", "PE", "Força", "Agilidade", "Intelecto", "Presença", "Vigor"},
			},
			"tormenta20": {
				Attributes: []string{"Raça", "Classe", "PV", "Mana", "Força", "Destreza", "Constituição", "Inteligência", "Sabedoria", "Carisma"},
			},
			"pokemon ttrpg": {
				Attributes: []string{"Treinador", "PV", "Energia", "Ataque", "Defesa", "Ataque Especial", "Defesa Especial", "Velocidade"},
			},
			"alice in borderland": {
				Attributes: []string{"Vida", "Sanidade", "Stamina", "Visto", "Popularidade", "Sangue", "Agilidade", "Vontade", "Raciocínio", "Engano"},
			},
		},
	}
}

// LoadSystems loads system templates from the .sheetkeeper directory.
// Built-in defaults are returned when the file doesn't exist.
func LoadSystems(basePath string) (*SystemsConfig, error) {
	data, err := os.ReadFile(SystemsFilePath(basePath))
	if os.IsNotExist(err) {
		return DefaultSystems(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading systems file: %w", err)
	}

	var raw SystemsConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing systems file: %w", err)
	}

	// Re-key so hand-edited files with mixed case still resolve.
	cfg := &SystemsConfig{Systems: make(map[string]SystemEntry, len(raw.Systems))}
	for name, entry := range raw.Systems {
		cfg.Add(name, entry)
	}
	return cfg, nil
}

// Save writes the systems configuration to the systems file.
func (s *SystemsConfig) Save(basePath string) error {
	configDir := filepath.Join(basePath, DefaultConfigDir)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling systems config: %w", err)
	}

	if err := os.WriteFile(SystemsFilePath(basePath), data, 0600); err != nil {
		return fmt.Errorf("writing systems file: %w", err)
	}

	return nil
}

// Add adds or replaces a system template.
func (s *SystemsConfig) Add(name string, entry SystemEntry) {
	if s.Systems == nil {
		s.Systems = make(map[string]SystemEntry)
	}
	s.Systems[entities.NormalizeName(name)] = entry
}

// Remove removes a system template.
func (s *SystemsConfig) Remove(name string) {
	if s.Systems != nil {
		delete(s.Systems, entities.NormalizeName(name))
	}
}

// Get returns the template for a system.
func (s *SystemsConfig) Get(name string) (*SystemEntry, error) {
	if len(s.Systems) == 0 {
		return nil, errors.New("no systems configured")
	}

	entry, ok := s.Systems[entities.NormalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("system %q not found (available: %s)", name, strings.Join(s.Names(), ", "))
	}

	return &entry, nil
}

// Exists checks if a system is configured.
func (s *SystemsConfig) Exists(name string) bool {
	if s.Systems == nil {
		return false
	}
	_, ok := s.Systems[entities.NormalizeName(name)]
	return ok
}

// Names returns the configured system names in sorted order.
func (s *SystemsConfig) Names() []string {
	names := make([]string, 0, len(s.Systems))
	for name := range s.Systems {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
