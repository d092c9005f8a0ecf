package domain

// CoalesceStr returns the first non-empty string from vals.
func CoalesceStr(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// IntFromPtrWithDefault returns the first non-nil *int value, or the fallback.
func IntFromPtrWithDefault(fallback int, ptrs ...*int) int {
	for _, p := range ptrs {
		if p != nil {
			return *p
		}
	}
	return fallback
}

// PositiveOr returns v when it is greater than zero, otherwise fallback.
// Group-level cadence fields use zero to mean "inherit the configured default".
func PositiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
