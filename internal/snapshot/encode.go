package snapshot

import (
	"bytes"
	"encoding/json"
	"text/template"
	"time"

	"github.com/naka-gawa/pr-portfolio/internal/domain"
)

type prsDocument struct {
	PullRequests []domain.PullRequest `json:"prs"`
	LastUpdated  string               `json:"lastUpdated"`
	CapturedAt   time.Time            `json:"capturedAt"`
	TotalCount   int                  `json:"totalCount"`
	Counts       domain.StatusCounts  `json:"counts"`
	Summary      domain.SizeSummary   `json:"summary"`
}

type orgsDocument struct {
	Organizations []domain.Organization `json:"orgs"`
	LastUpdated   string                `json:"lastUpdated"`
}

func nonNilPRs(prs []domain.PullRequest) []domain.PullRequest {
	if prs == nil {
		return []domain.PullRequest{}
	}
	return prs
}

func nonNilOrgs(orgs []domain.Organization) []domain.Organization {
	if orgs == nil {
		return []domain.Organization{}
	}
	return orgs
}

func marshal(v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func encodePullRequestsJSON(s *domain.Snapshot) ([]byte, error) {
	return marshal(prsDocument{
		PullRequests: nonNilPRs(s.PullRequests),
		LastUpdated:  s.LastUpdated,
		CapturedAt:   s.CapturedAt,
		TotalCount:   s.TotalCount,
		Counts:       s.Counts,
		Summary:      s.Summary,
	})
}

func encodeOrganizationsJSON(s *domain.Snapshot) ([]byte, error) {
	return marshal(orgsDocument{
		Organizations: nonNilOrgs(s.Organizations),
		LastUpdated:   s.LastUpdated,
	})
}

var prsModule = template.Must(template.New("prs").Parse(`// Auto-generated by pr-portfolio. Do not edit.
// Last updated: {{.LastUpdated}}

import type { PullRequest } from "@/lib/types";

export const prs: PullRequest[] = {{.Items}};

export const lastUpdated = {{.LastUpdatedLiteral}};
export const capturedAt = {{.CapturedAt}};
export const totalCount = {{.TotalCount}};
export const counts = {{.Counts}};
export const summary = {{.Summary}};
`))

var orgsModule = template.Must(template.New("orgs").Parse(`// Auto-generated by pr-portfolio. Do not edit.
// Last updated: {{.LastUpdated}}

import type { Organization } from "@/lib/types";

export const orgs: Organization[] = {{.Items}};
`))

type moduleData struct {
	LastUpdated        string
	LastUpdatedLiteral string
	Items              string
	CapturedAt         string
	TotalCount         int
	Counts             string
	Summary            string
}

func renderModule(tmpl *template.Template, s *domain.Snapshot, items any) ([]byte, error) {
	itemsJSON, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, err
	}
	literals := make([]string, 4)
	for i, v := range []any{s.LastUpdated, s.CapturedAt, s.Counts, s.Summary} {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		literals[i] = string(b)
	}
	var buf bytes.Buffer
	err = tmpl.Execute(&buf, moduleData{
		LastUpdated:        s.LastUpdated,
		LastUpdatedLiteral: literals[0],
		Items:              string(itemsJSON),
		CapturedAt:         literals[1],
		TotalCount:         s.TotalCount,
		Counts:             literals[2],
		Summary:            literals[3],
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodePullRequestsTS(s *domain.Snapshot) ([]byte, error) {
	return renderModule(prsModule, s, nonNilPRs(s.PullRequests))
}

func encodeOrganizationsTS(s *domain.Snapshot) ([]byte, error) {
	return renderModule(orgsModule, s, nonNilOrgs(s.Organizations))
}
