package uploader

import (
	"errors"
	"fmt"
)

// Kind categorizes a pipeline failure for the workflow-facing outcome
// message. The category reflects which stage of the pipeline failed,
// not which collaborator produced the error.
type Kind string

const (
	// KindConfiguration covers failures detected before any remote
	// call: no resolvable credential, missing document identifier.
	KindConfiguration Kind = "ConfigurationError"

	// KindRemoteIO covers failures from the share: directory walk,
	// existence checks, creation, deletion, allocation, range writes.
	KindRemoteIO Kind = "RemoteIOError"

	// KindSourceRead covers failures reading from the document
	// repository.
	KindSourceRead Kind = "SourceReadError"

	// KindResourceRelease covers failures closing the source stream
	// after the main operation. Logged for diagnostics only; never
	// alters the primary outcome.
	KindResourceRelease Kind = "ResourceReleaseError"
)

// Error tags a pipeline failure with its taxonomy category. The
// outcome boundary formats it as "<Kind>: <detail>".
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrap tags err with kind unless it already carries a category. The
// first classification wins so inner stages keep their more precise
// kind when errors pass through outer stages.
func wrap(kind Kind, err error) error {
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}

	return &Error{Kind: kind, Err: err}
}
