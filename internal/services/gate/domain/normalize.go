package domain

import (
	"strings"
	"unicode"

	perr "ballotgate/internal/platform/errors"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Limits on participant identifiers
const (
	MaxIDLen   = 64
	MaxNameLen = 120
)

// reservedIDs name directories of the face store
var reservedIDs = map[string]bool{"attempts": true, "staging": true}

// fold applies NFKC and folds full and half width forms
func fold(s string) string {
	return strings.TrimSpace(width.Fold.String(norm.NFKC.String(s)))
}

// NormalizeID folds id and checks it is a single safe token
// letters, digits, dash, underscore and dot are allowed, so ids are safe file names
func NormalizeID(id string) (string, error) {
	id = fold(id)
	if id == "" {
		return "", perr.WithField(perr.Validationf("id is required"), "id")
	}
	if len(id) > MaxIDLen {
		return "", perr.WithField(perr.Validationf("id must be at most %d characters", MaxIDLen), "id")
	}
	if id == "." || id == ".." || reservedIDs[id] {
		return "", perr.WithField(perr.Validationf("id is invalid"), "id")
	}
	for _, r := range id {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.') {
			return "", perr.WithField(perr.Validationf("id may only contain letters, digits, '-', '_' and '.'"), "id")
		}
	}
	return id, nil
}

// NormalizeName folds a display name and collapses inner whitespace
func NormalizeName(name string) (string, error) {
	name = strings.Join(strings.Fields(fold(name)), " ")
	if name == "" {
		return "", perr.WithField(perr.Validationf("name is required"), "name")
	}
	if len([]rune(name)) > MaxNameLen {
		return "", perr.WithField(perr.Validationf("name must be at most %d characters", MaxNameLen), "name")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return "", perr.WithField(perr.Validationf("name contains control characters"), "name")
		}
	}
	return name, nil
}
