package services

import "errors"

var (
	ErrValidationFailed = errors.New("validation failed")
	ErrArchiveNotFound  = errors.New("archive not found")
	ErrConcurrentUpdate = errors.New("tournament was changed by another request, retry")
)
