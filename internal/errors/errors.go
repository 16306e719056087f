// Package errors defines the error kinds shared by lightsd components. Every
// error a component returns wraps one of the sentinels below so callers can
// map it onto a socket or HTTP response.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrNotFound is returned when a requested light doesn't exist
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput is returned when the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")
	// ErrDeviceUnavailable is returned when the hardware backend can't be reached
	ErrDeviceUnavailable = errors.New("device unavailable")

	// ErrAddressResolution is returned when the MCU peer address could not
	// be resolved before the retry policy gave up.
	ErrAddressResolution = errors.New("address resolution failed")
	// ErrBindFailure is returned when the local MCU socket could not be
	// bound. Brightness forwarding is disabled; light control keeps working.
	ErrBindFailure = errors.New("bind failed")
	// ErrSendFailure marks a datagram that could not be delivered to the
	// MCU. It is logged and counted, never returned to light operations.
	ErrSendFailure = errors.New("send failed")
)

// LogErrorAndReturn logs err at error level and returns it. nil is passed through silently.
func LogErrorAndReturn(logger *slog.Logger, err error, message string, args ...any) error {
	if err != nil {
		logger.Error(message, append([]any{"error", err}, args...)...)
	}
	return err
}

func kindf(kind error, format string, args []any) error {
	return fmt.Errorf(format+": %w", append(args, kind)...)
}

func NotFoundf(format string, args ...any) error { return kindf(ErrNotFound, format, args) }

func InvalidInputf(format string, args ...any) error { return kindf(ErrInvalidInput, format, args) }

func DeviceUnavailablef(format string, args ...any) error {
	return kindf(ErrDeviceUnavailable, format, args)
}

func AddressResolutionf(format string, args ...any) error {
	return kindf(ErrAddressResolution, format, args)
}

func BindFailuref(format string, args ...any) error { return kindf(ErrBindFailure, format, args) }

func SendFailuref(format string, args ...any) error { return kindf(ErrSendFailure, format, args) }

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidInput reports whether err wraps ErrInvalidInput.
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }

func IsDeviceUnavailable(err error) bool { return errors.Is(err, ErrDeviceUnavailable) }

func IsBindFailure(err error) bool { return errors.Is(err, ErrBindFailure) }

func IsAddressResolution(err error) bool { return errors.Is(err, ErrAddressResolution) }
