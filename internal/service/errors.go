package service

import "github.com/pkg/errors"

var (
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingField       = errors.New("required field is empty")
	ErrTitleRequired      = errors.New("title is required")
	ErrColumnRequired     = errors.New("column is required")
	ErrNoFields           = errors.New("no fields to update")
)
