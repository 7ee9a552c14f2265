// Package id generates opaque string identifiers.
//
// Domain rows use integer keys assigned by the database. Identifiers that
// leave the process as tokens or file names use the prefixed NanoIDs here.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Known prefixes.
const (
	PrefixSession = "sess"
	PrefixRequest = "req"
)

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "sess-V1StGXR8_Z5jdHi6B-myT").
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// NewSessionID returns a fresh session identifier, used as a token's jti.
func NewSessionID() (string, error) {
	return Generate(PrefixSession)
}
