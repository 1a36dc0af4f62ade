package services

import (
	"errors"

	"kicks/internal/flow"
	"kicks/internal/repositories"
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrUnknownEmail       = errors.New("email not registered")
	ErrInvalidCredentials = errors.New("incorrect password")
	ErrNotAuthenticated   = errors.New("please login first")
	ErrEmptyCart          = errors.New("your cart is empty")

	ErrSubmissionInProgress = flow.ErrInProgress
	ErrProductNotFound      = repositories.ErrProductNotFound
)
