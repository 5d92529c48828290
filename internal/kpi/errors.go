package kpi

import (
	"errors"
	"fmt"

	"kpi-sync-go/internal/types"
)

// ErrInvalidGroup matches any InvalidGroupError via errors.Is.
var ErrInvalidGroup = errors.New("invalid group")

// InvalidGroupError is returned by every query given a group outside SS, TVS, KMN, HHD.
type InvalidGroupError struct {
	Group types.Group
}

func (e *InvalidGroupError) Error() string {
	return fmt.Sprintf("invalid group %q", string(e.Group))
}

func (e *InvalidGroupError) Is(target error) bool {
	return target == ErrInvalidGroup
}

// ErrUnknownBucket is returned for a bucket or threshold outside the fixed sets.
var ErrUnknownBucket = errors.New("unknown bucket")
