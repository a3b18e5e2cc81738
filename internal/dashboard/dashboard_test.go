package dashboard_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"creatorscope/internal/dashboard"
	"creatorscope/internal/store"
	"creatorscope/internal/telemetry"
	"creatorscope/internal/testsupport"
)

type fixture struct {
	app   *fiber.App
	store *store.Store
	dirs  [2]string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedCreator(t, s,
		store.Creator{Username: "jane", FullName: "Jane Doe", Followers: 100000, Biography: "AI filmmaker"},
		store.Post{ID: "p1", LikesCount: 4000, CommentsCount: 1000, Timestamp: "2026-01-02T00:00:00Z"},
	)
	testsupport.SeedChannel(t, s,
		store.Channel{ChannelID: "UC1", ChannelName: "Edits", Subscribers: 50000},
		store.Video{VideoID: "v1", Title: "Workflow", Views: 1000, Likes: 40, Comments: 10},
	)
	app := dashboard.New(dashboard.Options{
		Store:        s,
		Metrics:      telemetry.New(),
		AvatarsDir:   cfg.Paths.AvatarsDir,
		YTAvatarsDir: cfg.Paths.YTAvatarsDir,
	})
	return fixture{app: app, store: s, dirs: [2]string{cfg.Paths.AvatarsDir, cfg.Paths.YTAvatarsDir}}
}

func (f fixture) do(t *testing.T, method, target, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

func TestListCreatorsIncludesDerivedMetrics(t *testing.T) {
	f := newFixture(t)
	code, body := f.do(t, http.MethodGet, "/api/creators", "")
	if code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", code, body)
	}
	creators := decode[[]store.CreatorMetrics](t, body)
	if len(creators) != 1 || creators[0].EngagementRate != 5 {
		t.Fatalf("unexpected creators: %+v", creators)
	}
}

func TestGetCreatorDetailAndNotFound(t *testing.T) {
	f := newFixture(t)
	code, body := f.do(t, http.MethodGet, "/api/creators/jane", "")
	if code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", code, body)
	}
	detail := decode[map[string]any](t, body)
	if detail["username"] != "jane" {
		t.Fatalf("unexpected detail: %v", detail)
	}
	if posts, _ := detail["posts"].([]any); len(posts) != 1 {
		t.Fatalf("expected posts in detail: %v", detail)
	}

	code, body = f.do(t, http.MethodGet, "/api/creators/ghost", "")
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", code, body)
	}
	if msg := decode[map[string]string](t, body)["error"]; msg != "Creator not found" {
		t.Fatalf("unexpected error %q", msg)
	}

	code, _ = f.do(t, http.MethodGet, "/api/yt/creators/UC1", "")
	if code != http.StatusOK {
		t.Fatalf("expected channel detail, got %d", code)
	}
}

func TestUpdateCampaignRejectsInvalidStatus(t *testing.T) {
	f := newFixture(t)
	code, body := f.do(t, http.MethodPut, "/api/campaigns/jane", `{"status": "archived"}`)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", code, body)
	}
	want := "Invalid status. Must be one of: not_contacted, contacted, confirmed, content_posted"
	if msg := decode[map[string]string](t, body)["error"]; msg != want {
		t.Fatalf("unexpected error %q", msg)
	}
	if _, err := f.store.GetCampaignStatus(context.Background(), store.PlatformInstagram, "jane"); err == nil {
		t.Fatal("expected no campaign row after rejected update")
	}
}

func TestUpdateCampaignRoundTrip(t *testing.T) {
	f := newFixture(t)
	code, body := f.do(t, http.MethodPut, "/api/campaigns/jane", `{"status": "contacted", "notes": "sent dm"}`)
	if code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", code, body)
	}
	resp := decode[map[string]any](t, body)
	if resp["success"] != true || resp["username"] != "jane" || resp["status"] != "contacted" {
		t.Fatalf("unexpected response: %v", resp)
	}

	code, body = f.do(t, http.MethodGet, "/api/campaigns", "")
	if code != http.StatusOK {
		t.Fatalf("unexpected status %d", code)
	}
	campaigns := decode[[]store.Campaign](t, body)
	if len(campaigns) != 1 || campaigns[0].Notes != "sent dm" || campaigns[0].DisplayName != "Jane Doe" {
		t.Fatalf("unexpected campaigns: %+v", campaigns)
	}

	code, body = f.do(t, http.MethodGet, "/api/campaigns/stats", "")
	if code != http.StatusOK {
		t.Fatalf("unexpected status %d", code)
	}
	if stats := decode[store.CampaignStats](t, body); stats.Contacted != 1 || stats.Total != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	code, body = f.do(t, http.MethodPut, "/api/yt/campaigns/UC1", `{"status": "confirmed"}`)
	if code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", code, body)
	}
	if resp := decode[map[string]any](t, body); resp["channelId"] != "UC1" {
		t.Fatalf("unexpected response: %v", resp)
	}
}

func TestUpdateCampaignUnknownCreatorIs404(t *testing.T) {
	f := newFixture(t)
	code, body := f.do(t, http.MethodPut, "/api/yt/campaigns/UCghost", `{"status": "contacted"}`)
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", code, body)
	}
}

func TestStatsAnalysisAndHealth(t *testing.T) {
	f := newFixture(t)
	if err := f.store.UpsertAnalysisResult(context.Background(), store.AnalysisResult{
		Platform: store.PlatformYouTube, CreatorID: "UC1", CreatorName: "Edits",
		ProfileScores: map[string]int{"A": 7}, BestFitProfile: "A", BestFitScore: 7,
	}); err != nil {
		t.Fatalf("UpsertAnalysisResult: %v", err)
	}

	code, body := f.do(t, http.MethodGet, "/api/stats", "")
	if code != http.StatusOK {
		t.Fatalf("unexpected status %d", code)
	}
	if stats := decode[store.InstagramStats](t, body); stats.TotalCreators != 1 || stats.TotalFollowers != 100000 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	code, body = f.do(t, http.MethodGet, "/api/yt/stats", "")
	if code != http.StatusOK {
		t.Fatalf("unexpected status %d", code)
	}
	if stats := decode[store.YouTubeStats](t, body); stats.TotalChannels != 1 {
		t.Fatalf("unexpected yt stats: %+v", stats)
	}

	code, body = f.do(t, http.MethodGet, "/api/analysis?platform=yt", "")
	if code != http.StatusOK {
		t.Fatalf("unexpected status %d", code)
	}
	if results := decode[[]store.AnalysisResult](t, body); len(results) != 1 || results[0].ID != "youtube:UC1" {
		t.Fatalf("unexpected analysis: %+v", results)
	}
	code, body = f.do(t, http.MethodGet, "/api/analysis?platform=instagram", "")
	if code != http.StatusOK || len(decode[[]store.AnalysisResult](t, body)) != 0 {
		t.Fatalf("expected empty instagram analysis, got %d %s", code, body)
	}
	if code, _ := f.do(t, http.MethodGet, "/api/analysis?platform=tiktok", ""); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown platform, got %d", code)
	}

	code, body = f.do(t, http.MethodGet, "/api/analysis/stats", "")
	if code != http.StatusOK {
		t.Fatalf("unexpected status %d", code)
	}
	if stats := decode[store.AnalysisStats](t, body); stats.Total != 1 {
		t.Fatalf("unexpected analysis stats: %+v", stats)
	}

	if code, _ := f.do(t, http.MethodGet, "/healthz", ""); code != http.StatusOK {
		t.Fatalf("expected healthy, got %d", code)
	}
	code, body = f.do(t, http.MethodGet, "/metrics", "")
	if code != http.StatusOK || !strings.Contains(string(body), "creatorscope_http_requests_total") {
		t.Fatalf("expected request counter in metrics, got %d", code)
	}
}

func TestServesCachedAvatars(t *testing.T) {
	f := newFixture(t)
	if err := os.WriteFile(filepath.Join(f.dirs[0], "jane.jpg"), []byte("jpeg"), 0o644); err != nil {
		t.Fatalf("write avatar: %v", err)
	}
	code, body := f.do(t, http.MethodGet, "/avatars/jane.jpg", "")
	if code != http.StatusOK || string(body) != "jpeg" {
		t.Fatalf("unexpected avatar response %d %q", code, body)
	}
	if code, _ := f.do(t, http.MethodGet, "/yt-avatars/missing.jpg", ""); code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing avatar, got %d", code)
	}
}
