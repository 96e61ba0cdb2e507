// Package domain holds the gate types, ports and errors
package domain

import (
	perr "ballotgate/internal/platform/errors"
)

// Class is a participant class; each class has its own record table
type Class string

const (
	// ClassElector participants vote, stored in voters
	ClassElector Class = "elector"
	// ClassContestant participants stand for election, stored in candidates
	ClassContestant Class = "contestant"
)

// Classes lists every class in a stable order
var Classes = []Class{ClassElector, ClassContestant}

// Valid reports whether c is a known class
func (c Class) Valid() bool { return c == ClassElector || c == ClassContestant }

func (c Class) String() string { return string(c) }

// ParseClass accepts the class name and the plural route segment
func ParseClass(s string) (Class, bool) {
	switch s {
	case "elector", "electors", "voter", "voters":
		return ClassElector, true
	case "contestant", "contestants", "candidate", "candidates":
		return ClassContestant, true
	}
	return "", false
}

// Participant is an enrolled identity
type Participant struct {
	Class       Class  `json:"class"`
	ID          string `json:"id"`
	DisplayName string `json:"name"`
	// CredentialHash is the one way hash of the secret
	CredentialHash string `json:"-"`
	// ReferenceImage is the handle of the enrollment face sample
	ReferenceImage string `json:"-"`
}

// Reason is the outcome of an authentication
type Reason string

// Reasons; Mismatch never says which factor failed
const (
	ReasonSuccess       Reason = "success"
	ReasonNotFound      Reason = "not_found"
	ReasonCaptureFailed Reason = "capture_failed"
	ReasonMismatch      Reason = "mismatch"
	// ReasonUnavailable is a record store failure, reported as a denial
	ReasonUnavailable Reason = "unavailable"
)

// AuthResult is the authentication verdict
// the per factor flags are for logs and tests and never leave the process
type AuthResult struct {
	CredentialOK bool   `json:"-"`
	BiometricOK  bool   `json:"-"`
	Reason       Reason `json:"reason"`
	// ParticipantID is the normalized id, set on success
	ParticipantID string `json:"-"`
	// Detail is the capture state for CaptureFailed, empty otherwise
	Detail string `json:"detail,omitempty"`
}

// Granted reports a successful authentication
func (r AuthResult) Granted() bool { return r.Reason == ReasonSuccess }

// EnrollResult is a new participant plus the plaintext secret, shown once
type EnrollResult struct {
	Participant Participant
	Secret      string
}

const captureFailedMsg = "face capture failed"

// Enrollment errors; both are perr values so transports map them
var (
	ErrDuplicateID   = perr.New(perr.ErrorCodeDuplicateKey, "participant id already enrolled")
	ErrCaptureFailed = perr.New(perr.ErrorCodeCapture, captureFailedMsg)
)

// CaptureFailed wraps a capture error so it matches ErrCaptureFailed and keeps the cause
func CaptureFailed(cause error) error {
	return perr.Wrap(cause, perr.ErrorCodeCapture, captureFailedMsg)
}
