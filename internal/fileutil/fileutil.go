// Package fileutil persists serialisable state such as session snapshots.
//
// Files are written atomically: readers see either the previous file or
// the complete new one, never a partial write.
package fileutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is an encoding for persisted state.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("unknown format %q", s)
	}
}

// FormatFor picks the format from a file extension, defaulting to JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}

// Encode renders v in format f.
func Encode(f Format, v any) ([]byte, error) {
	switch f {
	case JSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return append(data, '\n'), nil
	case YAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}
}

// Decode parses data in format f into v.
func Decode(f Format, data []byte, v any) error {
	switch f {
	case JSON:
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("decode json: %w", err)
		}
	case YAML:
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q", f)
	}
	return nil
}

// Save encodes v using the format implied by path and writes it atomically.
func Save(path string, v any) error {
	data, err := Encode(FormatFor(path), v)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data, 0o644)
}

// Load reads path and decodes it into v using the format implied by path.
func Load(path string, v any) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return err
	}
	return Decode(FormatFor(path), data, v)
}

// WriteFileAtomic writes data to a temporary file in the target directory,
// syncs it, and renames it over filename.
func WriteFileAtomic(filename string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err = os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
