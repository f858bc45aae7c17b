package usecase

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/naka-gawa/pr-portfolio/internal/domain"
	"github.com/naka-gawa/pr-portfolio/internal/gateway"
	"github.com/shurcooL/githubv4"
)

// OwnerPlaceholder is substituted with the owner handle in avatar templates.
const OwnerPlaceholder = "{owner}"

var (
	// ErrNullRecord is returned for null placeholders in the source data.
	ErrNullRecord = errors.New("null record")
	// ErrMissingField is returned when a required value is absent from a record.
	ErrMissingField = errors.New("missing required field")
)

// AvatarURL builds the avatar reference for an owner handle from template.
func AvatarURL(template, owner string) string {
	return strings.ReplaceAll(template, OwnerPlaceholder, url.PathEscape(owner))
}

// Normalizer maps raw search results onto canonical pull requests.
type Normalizer struct {
	AvatarTemplate string
}

// NewNormalizer creates a Normalizer that synthesizes owner avatars from template.
func NewNormalizer(avatarTemplate string) *Normalizer {
	return &Normalizer{AvatarTemplate: avatarTemplate}
}

// Normalize converts one raw record. The returned bool is true when the state was
// not recognized and fell back to open.
func (n *Normalizer) Normalize(raw *gateway.RawPullRequest) (domain.PullRequest, bool, error) {
	if raw == nil {
		return domain.PullRequest{}, false, ErrNullRecord
	}
	if field := firstMissing(raw); field != "" {
		return domain.PullRequest{}, false, fmt.Errorf("%w: %s", ErrMissingField, field)
	}

	state, defaulted := mapState(string(raw.State))
	owner := raw.Repository.Owner.Login

	return domain.PullRequest{
		ID:        raw.ID,
		Number:    int(*raw.Number),
		Title:     raw.Title,
		URL:       raw.URL,
		State:     state,
		CreatedAt: raw.CreatedAt.Time.UTC(),
		UpdatedAt: raw.UpdatedAt.Time.UTC(),
		MergedAt:  optionalTime(raw.MergedAt),
		ClosedAt:  optionalTime(raw.ClosedAt),
		Repository: domain.Repository{
			Name:           raw.Repository.Name,
			Owner:          owner,
			URL:            raw.Repository.URL,
			OwnerAvatarURL: AvatarURL(n.AvatarTemplate, owner),
		},
		Additions:    int(*raw.Additions),
		Deletions:    int(*raw.Deletions),
		ChangedFiles: int(*raw.ChangedFiles),
		Comments:     int(*raw.Comments.TotalCount),
		IsDraft:      bool(*raw.IsDraft),
	}, defaulted, nil
}

// firstMissing returns the GraphQL name of the first absent required field.
func firstMissing(raw *gateway.RawPullRequest) string {
	checks := []struct {
		name    string
		missing bool
	}{
		{"id", raw.ID == ""},
		{"number", raw.Number == nil},
		{"title", raw.Title == ""},
		{"url", raw.URL == ""},
		{"state", raw.State == ""},
		{"createdAt", raw.CreatedAt == nil},
		{"updatedAt", raw.UpdatedAt == nil},
		{"isDraft", raw.IsDraft == nil},
		{"additions", raw.Additions == nil},
		{"deletions", raw.Deletions == nil},
		{"changedFiles", raw.ChangedFiles == nil},
		{"comments.totalCount", raw.Comments.TotalCount == nil},
		{"repository.name", raw.Repository.Name == ""},
		{"repository.owner.login", raw.Repository.Owner.Login == ""},
		{"repository.url", raw.Repository.URL == ""},
	}
	for _, c := range checks {
		if c.missing {
			return c.name
		}
	}
	return ""
}

// mapState translates the GitHub enum. Unknown values map to open.
func mapState(s string) (domain.Status, bool) {
	switch strings.ToUpper(s) {
	case "OPEN":
		return domain.StatusOpen, false
	case "MERGED":
		return domain.StatusMerged, false
	case "CLOSED":
		return domain.StatusClosed, false
	}
	return domain.StatusOpen, true
}

func optionalTime(v *githubv4.DateTime) *time.Time {
	if v == nil {
		return nil
	}
	t := v.Time.UTC()
	return &t
}
