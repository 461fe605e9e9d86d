package domain

// ValidIMPACode reports whether code is a six digit IMPA catalogue code.
func ValidIMPACode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidPortLocode reports whether code is a five character UN/LOCODE.
// Codes are carried uppercase; digits appear in the location part only,
// but the store treats the whole code as opaque alphanumeric.
func ValidPortLocode(code string) bool {
	if len(code) != 5 {
		return false
	}
	for _, r := range code {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
