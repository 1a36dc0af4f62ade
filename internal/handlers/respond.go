package handlers

import (
	"context"
	"errors"
	"fmt"

	"kicks/internal/services"
	"kicks/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// statusFor maps storefront errors to HTTP status codes.
func statusFor(err error) int {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return fiber.StatusBadRequest
	case errors.Is(err, validation.ErrValidation), errors.Is(err, services.ErrEmptyCart):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrUnknownEmail),
		errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrNotAuthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrProductNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrDuplicateEmail), errors.Is(err, services.ErrSubmissionInProgress):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err as a JSON error body. Field failures are listed
// under "errors" keyed by form field.
func respondError(c *fiber.Ctx, message string, err error) error {
	status := statusFor(err)
	body := fiber.Map{
		"message": message,
		"error":   err.Error(),
	}

	var reqErr *requestError
	var formErrs validation.Errors
	var fieldErr *validation.FieldError
	switch {
	case errors.As(err, &reqErr):
		body["message"] = "Invalid request body"
		if reqErr.fields != nil {
			body["message"] = "Validation failed"
			body["errors"] = reqErr.fields
		}
	case errors.As(err, &formErrs):
		body["message"] = "Validation failed"
		body["errors"] = formErrs
	case errors.As(err, &fieldErr):
		body["message"] = "Validation failed"
		body["errors"] = fiber.Map{fieldErr.Field: fieldErr.Message}
	}

	if status == fiber.StatusInternalServerError {
		body["message"] = "Internal server error"
	}
	return c.Status(status).JSON(body)
}

// requestError is a malformed or incomplete request body.
type requestError struct {
	err    error
	fields map[string]string
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

// parseBody decodes and validates a request body.
func parseBody(c *fiber.Ctx, v *validator.Validate, out any) error {
	if err := c.BodyParser(out); err != nil {
		return &requestError{err: err}
	}
	if err := v.Struct(out); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return &requestError{err: err}
		}
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return &requestError{err: err, fields: errorMessages}
	}
	return nil
}

// await starts a delayed submission and blocks until its completion
// callback fires or ctx is done.
func await[T any](ctx context.Context, start func(done func(T, error)) error) (T, error) {
	var zero T
	results := make(chan struct {
		val T
		err error
	}, 1)

	err := start(func(val T, err error) {
		results <- struct {
			val T
			err error
		}{val, err}
	})
	if err != nil {
		return zero, err
	}

	select {
	case r := <-results:
		return r.val, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
