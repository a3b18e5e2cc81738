package profiles_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"creatorscope/internal/profiles"
)

const sheet = "\ufeffProfile,Short Description (Audience • Niche • Platform),Example Creators,Audience Scale,Why They Drive Subscription Revenue (Alignment)\n" +
	`Workflow Tutorial Videomakers,"Editors • tutorials • YouTube","Alice, Bob",50k-500k,Teach tools daily` + "\n" +
	`AI Filmmakers,AI video • shorts • Instagram,Carol,10k-200k,"Show outputs, drive signups"` + "\n" +
	`,,,,` + "\n"

func TestParseKeepsOrderAndFields(t *testing.T) {
	got, err := profiles.Parse(strings.NewReader(sheet))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(got))
	}
	if got[0].Name != "Workflow Tutorial Videomakers" || got[0].Examples != "Alice, Bob" {
		t.Fatalf("unexpected first profile %+v", got[0])
	}
	if got[1].Rationale != "Show outputs, drive signups" {
		t.Fatalf("unexpected rationale %q", got[1].Rationale)
	}
	names := profiles.Names(got)
	if strings.Join(names, "|") != "Workflow Tutorial Videomakers|AI Filmmakers" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestDescribeNumbersProfiles(t *testing.T) {
	got, err := profiles.Parse(strings.NewReader(sheet))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	desc := profiles.Describe(got)
	lines := strings.Split(desc, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", desc)
	}
	want := "2. AI Filmmakers: AI video • shorts • Instagram. Examples: Carol. Scale: 10k-200k. Why: Show outputs, drive signups"
	if lines[1] != want {
		t.Fatalf("unexpected line\n got: %s\nwant: %s", lines[1], want)
	}
}

func TestParseMissingColumn(t *testing.T) {
	_, err := profiles.Parse(strings.NewReader("Profile,Example Creators\nA,B\n"))
	if !errors.Is(err, profiles.ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestParseRejectsEmptyAndDuplicates(t *testing.T) {
	header := strings.SplitN(sheet, "\n", 2)[0] + "\n"
	if _, err := profiles.Parse(strings.NewReader(header)); !errors.Is(err, profiles.ErrNoProfiles) {
		t.Fatalf("expected ErrNoProfiles, got %v", err)
	}
	dup := header + "A,x,x,x,x\na,y,y,y,y\n"
	if _, err := profiles.Parse(strings.NewReader(dup)); !errors.Is(err, profiles.ErrDuplicateProfile) {
		t.Fatalf("expected ErrDuplicateProfile, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.csv")
	if err := os.WriteFile(path, []byte(sheet), 0o644); err != nil {
		t.Fatalf("write sheet: %v", err)
	}
	got, err := profiles.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(got))
	}
	if _, err := profiles.Load(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
