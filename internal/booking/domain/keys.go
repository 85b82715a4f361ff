package domain

import (
	"regexp"
	"strings"
)

const (
	RecordPrefix = "records/"
	IndexKey     = "index.json"
)

// refIDPattern keeps ids safe to embed in blob keys. The UI issues
// GLB-YY-######-XXXX but older ids do not all follow it.
var refIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

func ValidateRefID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" || !refIDPattern.MatchString(id) {
		return "", ErrInvalidRefID
	}
	return id, nil
}

func RecordKey(refID string) string {
	return RecordPrefix + refID + ".json"
}

// RefIDFromKey strips the records/ prefix and .json suffix.
func RefIDFromKey(key string) string {
	return strings.TrimSuffix(strings.TrimPrefix(key, RecordPrefix), ".json")
}

// LegacyRecordKeys lists keys written by earlier deployments, in probe order.
func LegacyRecordKeys(refID string) []string {
	return []string{
		"main@" + refID + ".json",
		"main@/" + refID + ".json",
	}
}
