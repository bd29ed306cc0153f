package config

import (
	"errors"
	"strconv"
)

var (
	errEmptyRoot   = errors.New("must not be empty")
	errNonPositive = errors.New("must be positive")
	errNegative    = errors.New("must not be negative")
	errOutOfRange  = errors.New("must be in (0, 1]")
)

func itoa(v int) string {
	return strconv.Itoa(v)
}

func itoa64(v int64) string {
	return strconv.FormatInt(v, 10)
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
