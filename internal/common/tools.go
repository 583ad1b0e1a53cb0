package common

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID random uuid, with a prefix the dashes are dropped
func GenerateUUID(prefix string) string {
	id := uuid.New()
	if prefix != "" {
		return fmt.Sprintf("%s_%s", prefix, strings.ReplaceAll(id.String(), "-", ""))
	}
	return id.String()
}

// GenerateRecordID id for a saved calculation
func GenerateRecordID() string {
	return GenerateUUID("calc")
}

// IsRecordID reports whether id looks like GenerateRecordID output
func IsRecordID(id string) bool {
	raw, ok := strings.CutPrefix(id, "calc_")
	if !ok {
		return false
	}
	_, err := uuid.Parse(raw)
	return err == nil
}
