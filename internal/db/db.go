// Package db holds what the storage backends share: sentinel errors and key
// normalisation. The backends live in the postgres and mongodb subpackages.
package db

import (
	"errors"
	"strings"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

// WatchHistoryLimit caps the number of ids kept in a user's watch history.
const WatchHistoryLimit = 100

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// NormalizeIdentity folds usernames and emails into their stored form.
func NormalizeIdentity(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// PrependUnique puts id at the front of ids, dropping any earlier occurrence,
// and truncates the result to limit entries.
func PrependUnique(ids []string, id string, limit int) []string {
	out := make([]string, 0, len(ids)+1)
	out = append(out, id)
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
