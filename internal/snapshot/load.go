package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/naka-gawa/pr-portfolio/internal/domain"
)

// Load reads the artifacts written in format from dir back into a Snapshot.
func Load(dir string, format Format) (*domain.Snapshot, error) {
	read := readJSON
	switch format {
	case FormatJSON:
	case FormatTypeScript:
		read = readModule
	default:
		return nil, fmt.Errorf("unknown snapshot format %q", format)
	}

	var prs prsDocument
	if err := read(filepath.Join(dir, PullRequestsName+"."+string(format)), &prs); err != nil {
		return nil, err
	}
	var orgs orgsDocument
	if err := read(filepath.Join(dir, OrganizationsName+"."+string(format)), &orgs); err != nil {
		return nil, err
	}
	return &domain.Snapshot{
		PullRequests:  nonNilPRs(prs.PullRequests),
		Organizations: nonNilOrgs(orgs.Organizations),
		LastUpdated:   prs.LastUpdated,
		CapturedAt:    prs.CapturedAt,
		TotalCount:    prs.TotalCount,
		Counts:        prs.Counts,
		Summary:       prs.Summary,
	}, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read snapshot artifact: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

const exportPrefix = "\nexport const "

// readModule decodes a generated TypeScript module. Every export value is a JSON
// literal, so the exports are collected into one object and decoded like readJSON.
// JSON escapes newlines inside strings, which keeps exportPrefix from matching in values.
func readModule(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read snapshot artifact: %w", err)
	}
	chunks := strings.Split(string(data), exportPrefix)
	if len(chunks) < 2 {
		return fmt.Errorf("failed to decode %s: no exports found", path)
	}

	exports := make(map[string]json.RawMessage, len(chunks)-1)
	for _, chunk := range chunks[1:] {
		decl, value, ok := strings.Cut(chunk, " = ")
		if !ok {
			return fmt.Errorf("failed to decode %s: malformed export %q", path, firstLine(chunk))
		}
		name, _, _ := strings.Cut(decl, ":")
		value = strings.TrimSuffix(strings.TrimSpace(value), ";")
		if !json.Valid([]byte(value)) {
			return fmt.Errorf("failed to decode %s: export %s is not a JSON literal", path, name)
		}
		exports[strings.TrimSpace(name)] = json.RawMessage(value)
	}

	doc, err := json.Marshal(exports)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if err := json.Unmarshal(doc, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
