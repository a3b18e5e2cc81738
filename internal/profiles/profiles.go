// Package profiles loads the Ideal Creator Profiles reference sheet.
//
// The sheet is a CSV with a header row naming five columns. Profiles keep the
// file's row order; that order decides best-fit ties during scoring.
package profiles

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Column headers expected in the sheet.
const (
	ColumnProfile       = "Profile"
	ColumnDescription   = "Short Description (Audience • Niche • Platform)"
	ColumnExamples      = "Example Creators"
	ColumnAudienceScale = "Audience Scale"
	ColumnRationale     = "Why They Drive Subscription Revenue (Alignment)"
)

var (
	// ErrMissingColumn reports a header row without a required column.
	ErrMissingColumn = errors.New("missing profile column")
	// ErrNoProfiles reports a sheet with a header but no usable rows.
	ErrNoProfiles = errors.New("no ideal profiles")
	// ErrDuplicateProfile reports two rows sharing a profile name.
	ErrDuplicateProfile = errors.New("duplicate profile name")
)

// Profile is one row of the sheet.
type Profile struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Examples      string `json:"examples"`
	AudienceScale string `json:"audience_scale"`
	Rationale     string `json:"rationale"`
}

// Load reads and parses the sheet at path.
func Load(path string) ([]Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profiles: %w", err)
	}
	defer f.Close()
	profiles, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse profiles %s: %w", path, err)
	}
	return profiles, nil
}

// Parse decodes a sheet. Only the profile name is required per row; rows with
// an empty name are skipped.
func Parse(r io.Reader) ([]Profile, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoProfiles
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var (
		out  []Profile
		seen = make(map[string]struct{})
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		field := func(column string) string {
			i := index[column]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		p := Profile{
			Name:          field(ColumnProfile),
			Description:   field(ColumnDescription),
			Examples:      field(ColumnExamples),
			AudienceScale: field(ColumnAudienceScale),
			Rationale:     field(ColumnRationale),
		}
		if p.Name == "" {
			continue
		}
		key := strings.ToLower(p.Name)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateProfile, p.Name)
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, ErrNoProfiles
	}
	return out, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		for _, column := range requiredColumns {
			if strings.EqualFold(name, column) {
				if _, ok := index[column]; !ok {
					index[column] = i
				}
			}
		}
	}
	for _, column := range requiredColumns {
		if _, ok := index[column]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, column)
		}
	}
	return index, nil
}

var requiredColumns = []string{
	ColumnProfile,
	ColumnDescription,
	ColumnExamples,
	ColumnAudienceScale,
	ColumnRationale,
}

// Names returns profile names in sheet order.
func Names(profiles []Profile) []string {
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.Name)
	}
	return names
}

// Describe renders the numbered description block embedded in every prompt.
func Describe(profiles []Profile) string {
	var b strings.Builder
	for i, p := range profiles {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s: %s. Examples: %s. Scale: %s. Why: %s",
			i+1, p.Name, p.Description, p.Examples, p.AudienceScale, p.Rationale)
	}
	return b.String()
}
