package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/mapperkit/internal/config"
)

// Error code constants, shared by all commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E002" // Path not found
	ErrCodeLoadFailed  = "E003" // Statement file could not be loaded
	ErrCodeInvalid     = "E004" // Statement problems found by validate
	ErrCodeNoStatement = "E005" // Statement id not registered
	ErrCodeBadParam    = "E006" // --param is not valid JSON
	ErrCodeDatabase    = "E007" // Database could not be opened
	ErrCodeExecFailed  = "E008" // Statement execution failed
	ErrCodeUnsupported = "E009" // Statement kind cannot be run directly
)

// LoadError is a failure to read statements from a path.
type LoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadStatements reads a statement file or directory into a registry.
// Result type names resolve to map rows, since the CLI has no
// application types.
func LoadStatements(path string) (*config.Registry, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("path not found: %s", path), Err: err}
		}
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing %s: %v", path, err), Err: err}
	}

	reg := config.NewRegistry(config.WithDynamicTypes())
	if err := config.Load(reg, path); err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error(), Err: err}
	}
	return reg, nil
}

// loadFailure converts a LoadStatements error into command output.
func loadFailure(f *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return f.fail(ExitCommandError, loadErr.Code, loadErr.Message, nil)
	}
	return f.fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
}
