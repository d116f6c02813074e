package phasetimer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of a phase file.
type FileConfig struct {
	TerminalLabel string  `yaml:"terminal_label"`
	Phases        []Phase `yaml:"phases"`
}

// LoadSequence reads a phase file. An empty path yields the default phases.
func LoadSequence(path string) (*Sequence, error) {
	if path == "" {
		return NewSequence(DefaultPhases(), DefaultTerminalLabel)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read phase file: %w", err)
	}
	return ParseSequence(data)
}

// ParseSequence decodes a YAML phase file.
func ParseSequence(data []byte) (*Sequence, error) {
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse phase file: %w", err)
	}
	return NewSequence(cfg.Phases, cfg.TerminalLabel)
}
