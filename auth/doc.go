// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides credential generation and validation utilities.

# Operator Keys

Operator keys use HMAC-SHA256 to create deterministic, verifiable keys:

	operatorKey := auth.GenerateOperatorKey(operatorID, salt)
	err := auth.ValidateOperatorKey(operatorID, operatorKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same operator ID and salt always produce the same key. This allows
validation without storing the key in the database.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters

# IP Hashing

For privacy-preserving audit logging of vote marks:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
