package domain

import (
	"errors"
	"fmt"
)

// ErrNoScenario is returned when an operation needs an active scenario and none is loaded.
var ErrNoScenario = errors.New("no active scenario")

// ErrMissionNotFound is returned when a mission identity key is not in the catalog.
var ErrMissionNotFound = errors.New("mission not found")

// ErrRecordNotFound is returned by stores when no record exists under a key.
var ErrRecordNotFound = errors.New("record not found")

// ErrCorruptRecord is returned when a persisted record cannot be decoded.
var ErrCorruptRecord = errors.New("corrupt saved record")

// ErrInvalidScenario is returned by loaders for payloads that do not describe a playable scenario.
var ErrInvalidScenario = errors.New("invalid scenario document")

// ErrEmptyPack is returned by loaders for mission packs without playable games.
var ErrEmptyPack = errors.New("mission pack contains no playable games")

// ErrSessionOver is returned when a choice is applied after the session reached won or failed.
var ErrSessionOver = errors.New("session already finished")

// ErrInvalidBranch matches every *InvalidBranchError through errors.Is.
var ErrInvalidBranch = errors.New("invalid branch")

// InvalidBranchError reports a choice whose target node does not exist in the active scenario.
// The session is left untouched when it is returned.
type InvalidBranchError struct {
	NodeID   string
	TargetID string
}

func (e *InvalidBranchError) Error() string {
	return fmt.Sprintf("invalid branch: %s", e.TargetID)
}

// Is makes errors.Is(err, ErrInvalidBranch) succeed.
func (e *InvalidBranchError) Is(target error) bool {
	return target == ErrInvalidBranch
}
