package caption

import (
	"errors"
	"fmt"
)

var (
	// input could not be opened or decoded as text
	ErrFatalInput = errors.New("fatal input error")
	// episode output could not be written
	ErrSerialization = errors.New("serialization error")
)

type InputError struct {
	Path string
	// best guess from charset detection, empty when unknown
	Charset string
	Err     error
}

func (e *InputError) Error() string {
	if e.Charset != "" {
		return fmt.Sprintf("%s: %s (detected %s): %v", ErrFatalInput, e.Path, e.Charset, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrFatalInput, e.Path, e.Err)
}

func (e *InputError) Unwrap() []error {
	return []error{ErrFatalInput, e.Err}
}

type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrSerialization, e.Path, e.Err)
}

func (e *WriteError) Unwrap() []error {
	return []error{ErrSerialization, e.Err}
}
