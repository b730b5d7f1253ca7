package feed

import "time"

// IsInScope reports whether publishedAt lies within maxAge of now.
// The boundary is inclusive and future timestamps are always in scope.
// An unknown timestamp is never in scope.
func IsInScope(publishedAt *time.Time, now time.Time, maxAge time.Duration) bool {
	if publishedAt == nil {
		return false
	}
	return now.Sub(*publishedAt) <= maxAge
}
