// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"errors"
	"fmt"
	"time"
)

// Status is the lifecycle state of a pull request.
type Status string

const (
	StatusOpen   Status = "open"
	StatusMerged Status = "merged"
	StatusClosed Status = "closed"
)

// Valid reports whether s is one of the three canonical states.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusMerged, StatusClosed:
		return true
	}
	return false
}

// Repository identifies the repository a pull request belongs to.
type Repository struct {
	Name           string `json:"name"`
	Owner          string `json:"owner"`
	URL            string `json:"url"`
	OwnerAvatarURL string `json:"ownerAvatarUrl"`
}

// PullRequest is the canonical, source-independent representation of a pull request.
// Values are never mutated after normalization.
type PullRequest struct {
	ID           string     `json:"id"`
	Number       int        `json:"number"`
	Title        string     `json:"title"`
	URL          string     `json:"url"`
	State        Status     `json:"state"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	MergedAt     *time.Time `json:"mergedAt"`
	ClosedAt     *time.Time `json:"closedAt"`
	Repository   Repository `json:"repository"`
	Additions    int        `json:"additions"`
	Deletions    int        `json:"deletions"`
	ChangedFiles int        `json:"changedFiles"`
	Comments     int        `json:"comments"`
	IsDraft      bool       `json:"isDraft"`
}

// ErrLifecycleMismatch is returned by CheckLifecycle when timestamps disagree with the state.
var ErrLifecycleMismatch = errors.New("lifecycle timestamps do not match state")

// CheckLifecycle verifies that MergedAt is set iff the PR is merged and
// ClosedAt is set iff the PR is merged or closed.
func (p PullRequest) CheckLifecycle() error {
	merged := p.State == StatusMerged
	closed := merged || p.State == StatusClosed
	if (p.MergedAt != nil) != merged {
		return fmt.Errorf("%w: %s#%d is %s but mergedAt set=%t", ErrLifecycleMismatch, p.Repository.Name, p.Number, p.State, p.MergedAt != nil)
	}
	if (p.ClosedAt != nil) != closed {
		return fmt.Errorf("%w: %s#%d is %s but closedAt set=%t", ErrLifecycleMismatch, p.Repository.Name, p.Number, p.State, p.ClosedAt != nil)
	}
	return nil
}

// Organization summarizes the pull requests attributed to one repository owner.
type Organization struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
	PRCount   int    `json:"prCount"`
}
