package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidHex     = errors.New("invalid hex seat value")
	ErrSeatOutOfRange = errors.New("seat number out of range")
)

// ParseHexSeat converts a hex string (with or without a 0x prefix) to a seat
// number, enforcing the 1..maxSeat range even for syntactically valid hex.
func ParseHexSeat(hexValue string, maxSeat int) (int, error) {
	cleaned := strings.TrimSpace(hexValue)
	cleaned = strings.TrimPrefix(cleaned, "0x")
	cleaned = strings.TrimPrefix(cleaned, "0X")
	if cleaned == "" {
		return 0, ErrInvalidHex
	}

	value, err := strconv.ParseInt(cleaned, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHex, hexValue)
	}

	seat := int(value)
	if seat < 1 || seat > maxSeat {
		return 0, fmt.Errorf("%w: seat %d not in 1-%d", ErrSeatOutOfRange, seat, maxSeat)
	}
	return seat, nil
}

// FormatSeatHex renders a seat number the way the signal hardware sends it.
func FormatSeatHex(seatNo int) string {
	return fmt.Sprintf("0x%X", seatNo)
}
