package models

import (
	"errors"
	"fmt"
)

// Stage names the external step an error came from.
type Stage string

const (
	StageStorage       Stage = "storage_upload"
	StageMint          Stage = "mint"
	StageTransfer      Stage = "transfer"
	StageAssociation   Stage = "association"
	StageMetadataFetch Stage = "metadata_fetch"
	StageIndexer       Stage = "indexer"
)

// Sentinels for errors.Is on a StageError.
var (
	ErrStorageUpload = errors.New("storage upload failed")
	ErrMint          = errors.New("mint failed")
	ErrTransfer      = errors.New("transfer failed")
	ErrAssociation   = errors.New("association failed")
	ErrMetadataFetch = errors.New("metadata fetch failed")
	ErrIndexer       = errors.New("indexer query failed")
)

var stageSentinels = map[Stage]error{
	StageStorage:       ErrStorageUpload,
	StageMint:          ErrMint,
	StageTransfer:      ErrTransfer,
	StageAssociation:   ErrAssociation,
	StageMetadataFetch: ErrMetadataFetch,
	StageIndexer:       ErrIndexer,
}

// StageError wraps an upstream failure with the stage it happened in.
// Upstream is the service's own code or message, kept verbatim.
type StageError struct {
	Stage    Stage
	Upstream string
	Err      error
}

// NewStageError builds a StageError. upstream may be empty.
func NewStageError(stage Stage, upstream string, err error) *StageError {
	return &StageError{Stage: stage, Upstream: upstream, Err: err}
}

func (e *StageError) Error() string {
	msg := stageSentinels[e.Stage]
	var base string
	if msg != nil {
		base = msg.Error()
	} else {
		base = string(e.Stage) + " failed"
	}
	switch {
	case e.Upstream != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", base, e.Upstream, e.Err)
	case e.Upstream != "":
		return fmt.Sprintf("%s: %s", base, e.Upstream)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", base, e.Err)
	default:
		return base
	}
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func (e *StageError) Is(target error) bool {
	return target != nil && stageSentinels[e.Stage] == target
}

// StageOf returns the stage of the first StageError in err's chain.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
