// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidOperatorKey = errors.New("invalid operator key")

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateOperatorKey creates an HMAC-based key for an operator.
// Deterministic from the operator ID and salt, so validation needs no
// key storage.
func GenerateOperatorKey(operatorID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(operatorID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateOperatorKey checks if the provided key is valid for the operator
func ValidateOperatorKey(operatorID, operatorKey, salt string) error {
	expected := GenerateOperatorKey(operatorID, salt)
	if !hmac.Equal([]byte(operatorKey), []byte(expected)) {
		return ErrInvalidOperatorKey
	}
	return nil
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}
