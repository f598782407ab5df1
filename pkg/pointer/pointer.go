package pointer

// String returns a pointer to the provided string value
func String(value string) *string {
	return &value
}

// Uint8 returns a pointer to the provided uint8 value
func Uint8(value uint8) *uint8 {
	return &value
}
