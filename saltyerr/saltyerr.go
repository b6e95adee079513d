// Package saltyerr provides the structured error type used throughout the
// signaling core, matching spec.md §7's error kinds.
package saltyerr

import (
	"errors"
	"fmt"
)

// Stage identifies which part of the protocol stack raised the error.
type Stage string

const (
	StageChunk          Stage = "chunk"
	StageCrypto         Stage = "crypto"
	StageFraming        Stage = "framing"
	StageServerHandshake Stage = "server_handshake"
	StagePeerHandshake   Stage = "peer_handshake"
)

// Code is a stable, programmatic identifier for a specific failure, matching
// the error kinds enumerated in spec.md §7.
type Code string

const (
	CodeInvalidArgument     Code = "invalid_argument"
	CodeBadMessageLength    Code = "bad_message_length"
	CodeBadMessageType      Code = "bad_message_type"
	CodeBadMessage          Code = "bad_message"
	CodeBadCookie           Code = "bad_cookie"
	CodeBadNonceSource      Code = "bad_nonce_source"
	CodeBadNonceDestination Code = "bad_nonce_destination"
	CodeBadReceiver         Code = "bad_receiver"
	CodeDecryptionFailed    Code = "decryption_failed"
	CodeInvalidChunk        Code = "invalid_chunk"
	CodeAlreadyComplete     Code = "already_complete"
	CodeNotComplete         Code = "not_complete"
	CodeOverflowExhausted   Code = "overflow_exhausted"
	CodeProtocolError       Code = "protocol_error"
)

// Error is the structured error returned by every fatal condition in the
// signaling core.
type Error struct {
	Stage Stage
	Code  Code
	Err   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.Stage, e.Code, e.Err)
	}
	return fmt.Sprintf("%s (%s)", e.Stage, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a *Error with the same Code, letting callers
// write errors.Is(err, saltyerr.New(..., CodeBadCookie, nil)) style checks.
// Any other target does not match here; use CodeOf to read a bare Code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New wraps err (which may be nil) into a structured Error.
func New(stage Stage, code Code, err error) error {
	return &Error{Stage: stage, Code: code, Err: err}
}

// Fatal is the umbrella kind for any of the above encountered mid-state-machine.
var Fatal = errors.New("saltyerr: fatal protocol error")

// CodeOf extracts the Code carried by err, if any.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}
