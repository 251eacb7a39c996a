// Package ragerror holds the error taxonomy shared by the pipeline packages.
// Components wrap these sentinels with fmt.Errorf("...: %w", ...) and callers
// branch with errors.Is.
package ragerror

import "errors"

var (
	// ErrConfiguration is returned for invalid settings. It surfaces at
	// startup or construction time, never mid-request.
	ErrConfiguration = errors.New("configuration error")

	// ErrIngestion covers oversized files and sources with no usable text.
	ErrIngestion = errors.New("ingestion error")

	// ErrIndex is an add/search/delete failure against the vector engine.
	ErrIndex = errors.New("index error")

	// ErrBackendUnavailable means the named or default backend is not reachable.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrGenerationFailed means the backend was reachable but produced no usable answer.
	ErrGenerationFailed = errors.New("generation failed")
)

var (
	ErrNoBackend      = wrap(ErrBackendUnavailable, "no backend configured")
	ErrUnknownBackend = wrap(ErrBackendUnavailable, "unknown backend")
	ErrFileTooLarge   = wrap(ErrIngestion, "file too large")
	ErrNoText         = wrap(ErrIngestion, "no text could be extracted")
	ErrUnreadable     = wrap(ErrIngestion, "unreadable document")
)

type wrapped struct {
	msg    string
	parent error
}

func (w *wrapped) Error() string { return w.msg + ": " + w.parent.Error() }
func (w *wrapped) Unwrap() error { return w.parent }

func wrap(parent error, msg string) error {
	return &wrapped{msg: msg, parent: parent}
}
