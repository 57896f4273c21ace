package domain

import (
	"errors"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	ErrInvalidDateFormat = errors.New("invalid date format, expected YYYY-MM-DD")
	ErrInvalidTimeFormat = errors.New("invalid time format, expected HH:MM")
)

// IsValidDate devuelve true si s es una fecha de calendario real en formato YYYY-MM-DD.
// time.Parse ya rechaza meses y días fuera de rango (2024-13-40, 2023-02-29).
func IsValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// IsValidTime devuelve true si s es una hora de 24h en formato HH:MM con dos dígitos en cada campo.
func IsValidTime(s string) bool {
	if len(s) != len(TimeLayout) {
		return false
	}
	_, err := time.Parse(TimeLayout, s)
	return err == nil
}

// ValidateDate devuelve ErrInvalidDateFormat si s no es una fecha válida.
func ValidateDate(s string) error {
	if !IsValidDate(s) {
		return ErrInvalidDateFormat
	}
	return nil
}

// ValidateTime devuelve ErrInvalidTimeFormat si s no es una hora válida.
func ValidateTime(s string) error {
	if !IsValidTime(s) {
		return ErrInvalidTimeFormat
	}
	return nil
}
