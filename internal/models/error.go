package models

import "errors"

var (
	ErrConflictData     = errors.New("data conflicts with existing data")
	ErrDataNotFound     = errors.New("data not found")
	ErrInvalidAmount    = errors.New("amount must be a positive number of minor units")
	ErrInvalidCurrency  = errors.New("currency is required")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInternalError    = errors.New("internal error")
)
