package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// ChecksumFile is the manifest written next to the config file.
const ChecksumFile = ".checksums"

// ChecksumManifest maps config file basenames to their BLAKE3 hashes.
type ChecksumManifest struct {
	Version     int               `yaml:"version"`
	GeneratedAt string            `yaml:"generated_at"`
	Hashes      map[string]string `yaml:"hashes"`
}

// ErrNoChecksums is returned by LoadChecksums when no manifest exists.
var ErrNoChecksums = errors.New("checksums file not found (run 'playhook config lock')")

// ComputeBlake3Hash computes the BLAKE3 hash of a file.
func ComputeBlake3Hash(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

// VerifyFileHash verifies a file against an expected BLAKE3 hash.
func VerifyFileHash(filePath, expectedHash string) error {
	actualHash, err := ComputeBlake3Hash(filePath)
	if err != nil {
		return fmt.Errorf("failed to compute hash: %w", err)
	}

	if actualHash != expectedHash {
		return fmt.Errorf("hash mismatch for %s: expected %s, got %s",
			filepath.Base(filePath), expectedHash, actualHash)
	}

	return nil
}

// Lock hashes the config file and records it in the manifest beside it,
// keeping entries for other files in the same directory.
func Lock(configPath string) (*ChecksumManifest, error) {
	absPath, err := resolveConfigFile(configPath)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(absPath)

	manifest, err := LoadChecksums(dir)
	if errors.Is(err, ErrNoChecksums) {
		manifest = &ChecksumManifest{Version: 1, Hashes: make(map[string]string)}
	} else if err != nil {
		return nil, err
	}

	hash, err := ComputeBlake3Hash(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to hash %s: %w", absPath, err)
	}
	manifest.Hashes[filepath.Base(absPath)] = hash
	manifest.GeneratedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checksums: %w", err)
	}

	// Write with restrictive permissions (contains expected hashes)
	if err := os.WriteFile(filepath.Join(dir, ChecksumFile), data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write checksums: %w", err)
	}
	return manifest, nil
}

// LoadChecksums reads the .checksums file from a config directory.
func LoadChecksums(configDir string) (*ChecksumManifest, error) {
	data, err := os.ReadFile(filepath.Join(configDir, ChecksumFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoChecksums
		}
		return nil, fmt.Errorf("failed to read checksums: %w", err)
	}

	var manifest ChecksumManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse checksums: %w", err)
	}

	if manifest.Version != 1 {
		return nil, fmt.Errorf("unsupported checksums version: %d", manifest.Version)
	}
	if manifest.Hashes == nil {
		manifest.Hashes = make(map[string]string)
	}

	return &manifest, nil
}
