package customer

import "strings"

// zeroDate is the legacy "not set" marker still present in older rows.
const zeroDate = "0000-00-00"

// IsBlank reports whether a string or date field is unset. Absent values,
// empty strings and the zero-date sentinel are all equivalent.
func IsBlank(value string) bool {
	trimmed := strings.TrimSpace(value)
	return trimmed == "" || trimmed == zeroDate
}
