// Package qaerrors provides the typed error taxonomy shared across the
// pipeline, stores and CLI: configuration, retrieval, generation and storage
// failures. Errors wrap their cause and support errors.Is matching by type.
package qaerrors

// ErrConfiguration is the sentinel for configuration errors.
var ErrConfiguration = &ConfigurationError{}

// ConfigurationError signals a missing credential or invalid setup.
// It is fatal: callers surface it immediately and never retry.
type ConfigurationError struct {
	Message string
}

func NewConfigurationError(message string) *ConfigurationError {
	return &ConfigurationError{Message: message}
}

func (e *ConfigurationError) Error() string {
	if e.Message != "" {
		return "configuration: " + e.Message
	}
	return "configuration error"
}

// Is implements error matching by type.
func (e *ConfigurationError) Is(target error) bool {
	_, ok := target.(*ConfigurationError)
	return ok
}

// ErrRetrieval is the sentinel for retrieval errors.
var ErrRetrieval = &RetrievalError{}

// RetrievalError wraps a failure of the embedding or vector-index capability.
type RetrievalError struct {
	Err error
}

func NewRetrievalError(err error) *RetrievalError {
	return &RetrievalError{Err: err}
}

func (e *RetrievalError) Error() string {
	if e.Err != nil {
		return "retrieval: " + e.Err.Error()
	}
	return "retrieval error"
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Is implements error matching by type.
func (e *RetrievalError) Is(target error) bool {
	_, ok := target.(*RetrievalError)
	return ok
}

// ErrGeneration is the sentinel for generation errors.
var ErrGeneration = &GenerationError{}

// GenerationError wraps a failure of the text-generation capability.
type GenerationError struct {
	Err error
}

func NewGenerationError(err error) *GenerationError {
	return &GenerationError{Err: err}
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return "generation: " + e.Err.Error()
	}
	return "generation error"
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Is implements error matching by type.
func (e *GenerationError) Is(target error) bool {
	_, ok := target.(*GenerationError)
	return ok
}

// ErrStorage is the sentinel for event-log storage errors.
var ErrStorage = &StorageError{}

// StorageError wraps a failure to open or write the event log.
type StorageError struct {
	Path string
	Err  error
}

func NewStorageError(path string, err error) *StorageError {
	return &StorageError{Path: path, Err: err}
}

func (e *StorageError) Error() string {
	msg := "storage error"
	if e.Path != "" {
		msg = "storage " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is implements error matching by type.
func (e *StorageError) Is(target error) bool {
	_, ok := target.(*StorageError)
	return ok
}
