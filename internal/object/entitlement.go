package object

import (
	"fmt"
	"strings"
)

// Entitlement values carry the numeric endpoint identifier of their origin
// as a prefix, separated by a tilde, so the same entitlement name granted
// by different endpoints stays distinguishable.

// EncodeEntitlement prefixes value with the endpoint identifier.
func EncodeEntitlement(endpoint int64, value string) string {
	return fmt.Sprintf("%d~%s", endpoint, value)
}

// StripEntitlement removes an endpoint prefix if one is present; values
// without a prefix are returned unchanged.
func StripEntitlement(value string) string {
	i := strings.IndexByte(value, '~')
	if i <= 0 {
		return value
	}
	for _, r := range value[:i] {
		if r < '0' || r > '9' {
			return value
		}
	}
	return value[i+1:]
}
