package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// keyComments annotate the top-level keys of a written config file.
var keyComments = map[string]string{
	"owner_id": "owner_id identifies you as the owner of characters and NPCs.",
	"llm":      "llm enables 'npc generate'. Set OPENAI_API_KEY (or llm.api_key) to turn it on.",
	"sqlite":   "sqlite.path is resolved against the directory holding .sheetkeeper.",
	"log":      "log.level is debug, info, warn or error; log.format is text or json.",
}

// WriteDefault creates the .sheetkeeper directory and writes Default() as
// an annotated config file. An existing file is never overwritten.
func WriteDefault(basePath string) error {
	data, err := encodeConfig(Default())
	if err != nil {
		return err
	}
	return writeConfigFile(basePath, data, os.O_CREATE|os.O_EXCL|os.O_WRONLY)
}

// Write writes the given config to the config file, replacing any existing one.
func Write(basePath string, cfg *Config) error {
	data, err := encodeConfig(cfg)
	if err != nil {
		return err
	}
	return writeConfigFile(basePath, data, os.O_CREATE|os.O_TRUNC|os.O_WRONLY)
}

// Exists checks if a sheetkeeper config exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}

func encodeConfig(cfg *Config) ([]byte, error) {
	var node yaml.Node
	if err := node.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}

	node.HeadComment = "Sheetkeeper configuration"
	if node.Kind == yaml.MappingNode {
		for i := 0; i < len(node.Content); i += 2 {
			key := node.Content[i]
			key.HeadComment = keyComments[key.Value]
		}
	}

	data, err := yaml.Marshal(&node)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}

func writeConfigFile(basePath string, data []byte, flag int) (err error) {
	if err := os.MkdirAll(ConfigDir(basePath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configFile := ConfigFilePath(basePath)
	f, err := os.OpenFile(configFile, flag, 0600)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("config file already exists: %s", configFile)
	}
	if err != nil {
		return fmt.Errorf("opening config file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing config file: %w", cerr)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
