// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads the crawler's contact details from a directory of
// plain-text files. DBLP asks bulk clients to identify themselves; when a
// contact email is configured it is folded into the User-Agent header.
//
// Supported key file: contact-email.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const contactEmailFile = "contact-email"

// Credentials holds the optional identity the crawler sends upstream.
type Credentials struct {
	// ContactEmail identifies the operator to the API, e.g.
	// "someone@example.org". Empty when unconfigured.
	ContactEmail string
}

// Load reads credentials from dir. A missing directory or missing files
// are not errors; Load returns zero-value Credentials.
func Load(dir string) (Credentials, error) {
	data, err := os.ReadFile(filepath.Join(dir, contactEmailFile))
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, nil
		}
		return Credentials{}, fmt.Errorf("reading %s: %w", contactEmailFile, err)
	}
	return Credentials{ContactEmail: strings.TrimSpace(string(data))}, nil
}

// UserAgent combines the base product token with the contact email when
// one is configured.
func (c Credentials) UserAgent(base string) string {
	if c.ContactEmail == "" {
		return base
	}
	return fmt.Sprintf("%s (mailto:%s)", base, c.ContactEmail)
}
