package models

import "errors"

// Custom errors
var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key violation")
	ErrInvalidRef   = errors.New("invalid reference format")
	ErrInvalidYear  = errors.New("invalid season year")
)
