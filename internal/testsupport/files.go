package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// ProfilesCSV is a two-profile ideal profiles sheet.
const ProfilesCSV = "Profile,Short Description (Audience • Niche • Platform),Example Creators,Audience Scale,Why They Drive Subscription Revenue (Alignment)\n" +
	"AI Filmmakers,AI video makers • shorts • Instagram,Example One,10k-200k,Show generated footage\n" +
	"Workflow Tutorial Videomakers,Editors • tutorials • YouTube,Example Two,50k-500k,Teach tools step by step\n"

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
