package model

import "errors"

var (
	ErrNotAuthorized     = errors.New("forum requires authorization")
	ErrInvalidResponse   = errors.New("invalid response")
	ErrPeriodNotFound    = errors.New("reporting period not found")
	ErrConfigUnavailable = errors.New("configuration unavailable")
)
