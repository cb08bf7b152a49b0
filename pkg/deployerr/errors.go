package deployerr

import (
	"errors"
)

// ErrorType classifies a failure of the deploy pipeline.
// Primarily used to decide whether a failure happened before or after
// the output tree was mutated.
type ErrorType string

const (
	// ConfigurationErrorType is raised before any filesystem mutation.
	ConfigurationErrorType ErrorType = "configuration"
	// FilesystemErrorType may be raised after a partial mutation; nothing is rolled back.
	FilesystemErrorType ErrorType = "filesystem"
	// BuildErrorType is raised when a delegated build stage fails.
	BuildErrorType ErrorType = "build"
	// VersionMismatchType is only ever logged.
	VersionMismatchType ErrorType = "version-mismatch"
)

// Error associates an error with an ErrorType.
type Error struct {
	Type ErrorType
	Err  error
}

func (e Error) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

func (e Error) Unwrap() error {
	return e.Err
}

// New returns a new Error initialized with the given arguments.
func New(errType ErrorType, err error) *Error {
	return &Error{
		Type: errType,
		Err:  err,
	}
}

func NewConfigurationError(err error) *Error {
	return New(ConfigurationErrorType, err)
}

func NewFilesystemError(err error) *Error {
	return New(FilesystemErrorType, err)
}

func NewBuildError(err error) *Error {
	return New(BuildErrorType, err)
}

func NewVersionMismatchWarning(err error) *Error {
	return New(VersionMismatchType, err)
}

// TypeOf returns the type of the first Error found in err's chain,
// or the empty string if there is none.
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ""
}

func IsConfiguration(err error) bool {
	return TypeOf(err) == ConfigurationErrorType
}

func IsFilesystem(err error) bool {
	return TypeOf(err) == FilesystemErrorType
}

func IsBuild(err error) bool {
	return TypeOf(err) == BuildErrorType
}

func IsVersionMismatch(err error) bool {
	return TypeOf(err) == VersionMismatchType
}
