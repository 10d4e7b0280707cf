package edxdk

import "strings"

// ShortKey returns the final '/' delimited segment of a block identifier such
// as "i4x://MITx/6.002x/problem/Sample_Problem". Identifiers without a slash
// are returned unchanged.
func ShortKey(raw string) string {
	return raw[strings.LastIndex(raw, "/")+1:]
}

// EventKey extracts a block key from the id found in a tracking event's
// payload. Slash delimited ids are trimmed with ShortKey. Dash delimited
// location ids ("i4x-MITx-6_002x-problem-Sample_Problem") with more than three
// parts yield their last part. Anything else is not recognized.
func EventKey(id string) (string, bool) {
	if strings.Contains(id, "/") {
		key := ShortKey(id)
		return key, key != ""
	}
	parts := strings.Split(id, "-")
	if len(parts) > 3 && parts[len(parts)-1] != "" {
		return parts[len(parts)-1], true
	}
	return "", false
}

// PageKey extracts a block key from the page URL of a tracking event. Courseware
// URLs end in a slash, so the key is the second to last segment; URLs with
// fewer than three segments are not recognized.
func PageKey(page string) (string, bool) {
	parts := strings.Split(page, "/")
	if len(parts) > 2 && parts[len(parts)-2] != "" {
		return parts[len(parts)-2], true
	}
	return "", false
}
