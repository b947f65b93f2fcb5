// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles configuration from CLI flags and environment.

# Precedence

CLI flags win over environment variables; a .env file in the working
directory (loaded via godotenv) fills in missing environment variables
for local development.

# Settings

Required:

  - DATABASE_URL (-d): connection string (postgres URL or sqlite path)
  - OPERATOR_KEY_SALT (--operator-salt): secret for operator key HMAC

Optional:

  - PORT (-p): server port (default: 3419)
  - DATABASE_TYPE (-t): "sqlite" or "postgres" (default: sqlite)
*/
package cliparse
