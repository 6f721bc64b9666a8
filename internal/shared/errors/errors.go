package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common cases
var (
	ErrNoInterfaces  = errors.New("no interfaces produced any dump output")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ParseError represents a malformed field in a wg dump record. It carries the
// offending line so a misparse can be traced back to the exact input record.
type ParseError struct {
	Field   string // e.g. "listen_port", "latest_handshake", "endpoint"
	Line    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dump parse failed for %s in line %q: %s: %v", e.Field, e.Line, e.Message, e.Err)
	}
	return fmt.Sprintf("dump parse failed for %s in line %q: %s", e.Field, e.Line, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new parse error
func NewParseError(field, line, message string, err error) *ParseError {
	return &ParseError{
		Field:   field,
		Line:    line,
		Message: message,
		Err:     err,
	}
}

// ConfigBlockError represents a [Peer] block missing a required entry.
// It carries the full block so the operator can find it in the config file.
type ConfigBlockError struct {
	Missing string // "PublicKey" or "AllowedIPs"
	Lines   []string
}

func (e *ConfigBlockError) Error() string {
	return fmt.Sprintf("%s entry not found in peer block: [%s]", e.Missing, strings.Join(e.Lines, " | "))
}

// NewConfigBlockError creates a new config block error
func NewConfigBlockError(missing string, lines []string) *ConfigBlockError {
	return &ConfigBlockError{
		Missing: missing,
		Lines:   lines,
	}
}

// AnnotationError represents an unusable friendly annotation tag: either the
// tag name is not supported or its value could not be decoded.
type AnnotationError struct {
	Tag     string
	Message string
	Err     error
}

func (e *AnnotationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("annotation error [%s]: %s: %v", e.Tag, e.Message, e.Err)
	}
	return fmt.Sprintf("annotation error [%s]: %s", e.Tag, e.Message)
}

func (e *AnnotationError) Unwrap() error {
	return e.Err
}

// NewAnnotationError creates a new annotation error
func NewAnnotationError(tag, message string, err error) *AnnotationError {
	return &AnnotationError{
		Tag:     tag,
		Message: message,
		Err:     err,
	}
}

// EncodingError represents input bytes that are not valid UTF-8 text.
type EncodingError struct {
	Source string // e.g. "wg show wg0 dump"
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("output of %s is not valid UTF-8", e.Source)
}

// NewEncodingError creates a new encoding error
func NewEncodingError(source string) *EncodingError {
	return &EncodingError{Source: source}
}

// CommandError represents a failed status command invocation.
type CommandError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("command %q failed: %v: %s", e.Command, e.Err, e.Stderr)
	}
	return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new command error
func NewCommandError(command, stderr string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Stderr:  stderr,
		Err:     err,
	}
}

// ReadError represents a failure reading a configuration file.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// NewReadError creates a new read error
func NewReadError(path string, err error) *ReadError {
	return &ReadError{
		Path: path,
		Err:  err,
	}
}
