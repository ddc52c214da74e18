package mail

import "errors"

// Errors returned by the manager and the delivery handlers.
var (
	// ErrConfigExists is returned when setting a configuration under a
	// key that is already taken.
	ErrConfigExists = errors.New("mail: config already exists")

	// ErrHandlerNotRegistered is returned when a configuration names a
	// handler no constructor was registered for.
	ErrHandlerNotRegistered = errors.New("mail: handler not registered")

	// ErrInvalidConfig is returned when a configuration key is unknown
	// or a configuration is unusable.
	ErrInvalidConfig = errors.New("mail: invalid config")

	// ErrMissingRecipients is returned when sending a message that has
	// no To, Cc or Bcc addresses.
	ErrMissingRecipients = errors.New("mail: missing recipients")

	// ErrDeliveryFailed is returned when a handler accepted a message
	// but could not deliver it.
	ErrDeliveryFailed = errors.New("mail: delivery failed")
)
