package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already registered")
	ErrEventNotFound      = errors.New("event not found")
	ErrLoginRequired      = errors.New("login required")
	ErrDuplicateJoin      = errors.New("already joined this event")
	ErrPersistence        = errors.New("persistence failure")
)
