package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

// IntegrityResult collects the outcome of a checksum verification.
type IntegrityResult struct {
	Passed   bool
	Warnings []string
	Errors   []string
}

// VerifyIntegrity checks the config file against the .checksums manifest in
// its directory. A missing manifest is a warning; a missing entry or a hash
// mismatch fails, since the file holds commands that will be executed.
func VerifyIntegrity(configPath string) (*IntegrityResult, error) {
	absPath, err := resolveConfigFile(configPath)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(absPath)
	result := &IntegrityResult{Passed: true}

	manifest, err := LoadChecksums(dir)
	if errors.Is(err, ErrNoChecksums) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("no %s manifest found in %s; run 'playhook config lock' to enable integrity verification", ChecksumFile, dir))
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	expectedHash, ok := manifest.Hashes[filepath.Base(absPath)]
	if !ok {
		result.Passed = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("file %s not in %s manifest", filepath.Base(absPath), ChecksumFile))
		return result, nil
	}

	if err := VerifyFileHash(absPath, expectedHash); err != nil {
		result.Passed = false
		result.Errors = append(result.Errors, err.Error())
	}
	return result, nil
}
