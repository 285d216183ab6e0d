package app

// nz returns s unless it is empty, in which case fallback is returned.
func nz(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
