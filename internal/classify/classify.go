package classify

import "strings"

// AdKey identifies an ad by ad set and case-insensitive name.
func AdKey(adSetID, name string) string {
	return strings.TrimSpace(adSetID) + "\x00" + strings.ToLower(strings.TrimSpace(name))
}

// SplitExisting separates candidates whose key is already present in
// existing. Candidates sharing a key with an earlier candidate are kept, so
// a file may still launch the same name twice on purpose.
func SplitExisting[T any](candidates []T, key func(T) string, existing map[string]struct{}) ([]T, []T) {
	fresh := make([]T, 0, len(candidates))
	duplicates := make([]T, 0)

	for _, candidate := range candidates {
		if _, found := existing[key(candidate)]; found {
			duplicates = append(duplicates, candidate)
			continue
		}
		fresh = append(fresh, candidate)
	}
	return fresh, duplicates
}
