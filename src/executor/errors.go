package executor

import "errors"

var (
	// ErrThreadBusy is returned when a turn is already running on the thread.
	ErrThreadBusy = errors.New("a turn is already running on this thread")

	// ErrModelClientRequired is returned when the service has no model client.
	ErrModelClientRequired = errors.New("model client is required")

	// ErrToolboxRequired is returned when a turn is started without a toolbox.
	ErrToolboxRequired = errors.New("toolbox is required")
)
