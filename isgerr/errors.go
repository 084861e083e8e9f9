// Package isgerr defines the error taxonomy surfaced at every layer of the
// storage system, from codecs up through the CLI. Each error carries a Code
// identifying its category so the orchestrator and CLI can map failures to
// exit codes without string-matching messages.
package isgerr

import (
	"errors"
	"fmt"
)

// Code classifies an error into one of the categories an operator needs to
// distinguish. Codes are surfaced verbatim in CLI output.
type Code string

// The full taxonomy. Every error returned across a package boundary in this
// module should carry one of these.
const (
	CodeIO                 Code = "io"
	CodeStorageNotFound    Code = "storage-not-found"
	CodeStorageLimit       Code = "storage-limit"
	CodeStorageNetwork     Code = "storage-network"
	CodeStorageUnsupported Code = "storage-unsupported"
	CodeStorageRouteMissing Code = "storage-route-missing"
	CodeCodecFormat        Code = "codec-format"
	CodeCodecTruncated     Code = "codec-truncated"
	CodeCodecDecode        Code = "codec-decode"
	CodeCodecUnimplemented Code = "codec-unimplemented"
	CodeErasureInsufficient Code = "erasure-insufficient"
	CodeErasureInternal    Code = "erasure-internal"
	CodeCryptoKDF          Code = "crypto-kdf"
	CodeCryptoIntegrity    Code = "crypto-integrity"
	CodeIndex              Code = "index"
	CodeFileNotFound       Code = "file-not-found"
	CodeBlockNotFound      Code = "block-not-found"
	CodeConfig             Code = "config"
	CodeOther              Code = "other"
)

// Error wraps an underlying cause with a taxonomy Code and an optional
// message prefix. It implements Unwrap so errors.Is/As see through to the
// cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// New constructs an *Error with no wrapped cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap constructs an *Error that wraps an existing cause under the given
// code. If cause is nil, Wrap returns nil, mirroring build.ExtendErr's
// nil-passthrough convention.
func Wrap(code Code, message string, cause error) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is reports whether target is an *Error with the same Code, allowing
// errors.Is(err, isgerr.New(CodeIndex, "")) style category checks.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// CodeOf extracts the Code from err if it is, or wraps, an *Error. It
// returns CodeOther for any error that was never tagged.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeOther
}

// Is reports whether err carries the given Code anywhere in its chain.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
