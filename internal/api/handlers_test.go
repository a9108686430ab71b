package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mreyes/reel-server/internal/cache"
	"github.com/mreyes/reel-server/internal/config"
	"github.com/mreyes/reel-server/internal/db"
	"github.com/mreyes/reel-server/internal/models"
	"github.com/mreyes/reel-server/internal/studio"
	"github.com/mreyes/reel-server/internal/synopsis"
)

type fakeSynopsisProvider struct {
	calls int
}

func (f *fakeSynopsisProvider) Name() string      { return "fake" }
func (f *fakeSynopsisProvider) ModelName() string { return "fake-model" }

func (f *fakeSynopsisProvider) Generate(ctx context.Context, s models.Storyline) (string, error) {
	f.calls++
	return "A reel worth watching: " + s.Title, nil
}

func (f *fakeSynopsisProvider) IsAvailable(ctx context.Context) bool { return true }

func setupTestServer(t *testing.T) (*httptest.Server, func()) {
	return setupTestServerWithProvider(t, nil)
}

func setupTestServerWithProvider(t *testing.T, provider synopsis.Provider) (*httptest.Server, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "reel-test-*")
	if err != nil {
		t.Fatalf("creating temp dir: %v", err)
	}

	dbPath := tmpDir + "/test.db"

	cfg := &config.Config{
		Port:            "0",
		DBPath:          dbPath,
		TokenArtist:     "test_artist_token",
		TokenManager:    "test_manager_token",
		Timezone:        "UTC",
		RebuildHour:     4,
		CacheTTLMinutes: 30,
	}

	database, err := db.Open(dbPath)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("opening database: %v", err)
	}

	store := cache.New(30*time.Minute, time.Hour)
	producer := studio.New(database, store)

	router := NewRouter(cfg, database, producer, store, provider)
	server := httptest.NewServer(router)

	cleanup := func() {
		server.Close()
		database.Close()
		os.RemoveAll(tmpDir)
	}

	return server, cleanup
}

func doRequest(t *testing.T, method, url, token, payload string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != "" {
		body = bytes.NewBufferString(payload)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	resp.Body.Close()
	return body
}

func seedCorpus(t *testing.T, serverURL string) {
	t.Helper()

	anecdotes := []string{
		`{"id":"first-set","date":"2001-06-15","title":"First Set at the Basement","story":"Two crates of records and a borrowed mixer.","narrator":"Rico","location":"Queens","tags":["dj","club"]}`,
		`{"id":"mixtape-nights","date":"2004-09-03","title":"Mixtape Nights","story":"Every weekend a different club.","narrator":"Lena","location":"Brooklyn","tags":["dj"]}`,
		`{"id":"radio-debut","date":"2009-04-20","title":"Radio Debut","story":"The morning broadcast played my record on air for the first time.","narrator":"Marcus","location":"Manhattan","tags":["radio"]}`,
		`{"id":"warehouse-new-year","date":"2013-11-30","title":"Warehouse New Year","story":"A thousand people in an old warehouse.","narrator":"Dee","location":"Bushwick","tags":["club"]}`,
	}
	for _, payload := range anecdotes {
		resp := doRequest(t, "POST", serverURL+"/api/v1/anecdotes", "test_artist_token", payload)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("seeding anecdote: expected status 200, got %d", resp.StatusCode)
		}
		resp.Body.Close()
	}
}

// ============== Health Tests ==============

func TestHealthEndpoint(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
	if body["synopsis"] != "not configured" {
		t.Errorf("expected synopsis not configured, got %v", body["synopsis"])
	}
	if body["version"] != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %v", body["version"])
	}
	if body["anecdotes"] != float64(0) {
		t.Errorf("expected 0 anecdotes, got %v", body["anecdotes"])
	}
}

// ============== Auth Tests ==============

func TestAnecdotesRequireAuth(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	resp := doRequest(t, "GET", server.URL+"/api/v1/anecdotes", "", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected status 401 without auth, got %d", resp.StatusCode)
	}
}

func TestInvalidToken(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	resp := doRequest(t, "GET", server.URL+"/api/v1/anecdotes", "invalid_token", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected status 401 with invalid token, got %d", resp.StatusCode)
	}
}

func TestActorResolution(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	tests := []struct {
		token string
	}{
		{"test_artist_token"},
		{"test_manager_token"},
	}

	for _, tc := range tests {
		resp := doRequest(t, "GET", server.URL+"/api/v1/anecdotes", tc.token, "")
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected status 200 for token %s, got %d", tc.token, resp.StatusCode)
		}
	}
}

// ============== Anecdote CRUD Tests ==============

func TestCreateAndGetAnecdote(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	payload := `{"date":"2001-06-15","title":"First Set at the Basement","story":"Two crates of records.","narrator":"Rico","location":"Queens","tags":["DJ","Club"]}`
	resp := doRequest(t, "POST", server.URL+"/api/v1/anecdotes", "test_artist_token", payload)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	id, _ := body["id"].(string)
	if !strings.HasPrefix(id, "anc_") {
		t.Errorf("expected generated anc_ id, got %v", body["id"])
	}
	if body["status"] != models.StatusStored {
		t.Errorf("expected status stored, got %v", body["status"])
	}

	getResp := doRequest(t, "GET", server.URL+"/api/v1/anecdotes/"+id, "test_artist_token", "")
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200 on get, got %d", getResp.StatusCode)
	}

	got := decodeBody(t, getResp)
	if got["title"] != "First Set at the Basement" {
		t.Errorf("expected title to round trip, got %v", got["title"])
	}
	if got["year"] != float64(2001) {
		t.Errorf("expected year derived from date, got %v", got["year"])
	}
	tags, _ := got["tags"].([]interface{})
	if len(tags) != 2 || tags[0] != "dj" || tags[1] != "club" {
		t.Errorf("expected tags lowercased, got %v", got["tags"])
	}
}

func TestCreateAnecdoteValidation(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	resp := doRequest(t, "POST", server.URL+"/api/v1/anecdotes", "test_artist_token", `{}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400 for empty anecdote, got %d", resp.StatusCode)
	}

	resp = doRequest(t, "POST", server.URL+"/api/v1/anecdotes", "test_artist_token", `not json`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400 for malformed body, got %d", resp.StatusCode)
	}
}

func TestCreateAnecdoteDuplicate(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	payload := `{"id":"first-set","date":"2001-06-15","title":"First Set","story":"Two crates."}`

	resp := doRequest(t, "POST", server.URL+"/api/v1/anecdotes", "test_artist_token", payload)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200 on first create, got %d", resp.StatusCode)
	}

	resp = doRequest(t, "POST", server.URL+"/api/v1/anecdotes", "test_artist_token", payload)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected status 409 on duplicate id, got %d", resp.StatusCode)
	}
}

func TestUpdateAnecdote(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	create := `{"id":"first-set","date":"2001-06-15","title":"First Set","story":"Two crates."}`
	resp := doRequest(t, "POST", server.URL+"/api/v1/anecdotes", "test_artist_token", create)
	resp.Body.Close()

	update := `{"date":"2001-06-15","title":"First Set at the Basement","story":"Two crates of records."}`
	resp = doRequest(t, "PUT", server.URL+"/api/v1/anecdotes/first-set", "test_artist_token", update)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200 on update, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["status"] != models.StatusUpdated {
		t.Errorf("expected status updated, got %v", body["status"])
	}

	getResp := doRequest(t, "GET", server.URL+"/api/v1/anecdotes/first-set", "test_artist_token", "")
	got := decodeBody(t, getResp)
	if got["title"] != "First Set at the Basement" {
		t.Errorf("expected updated title, got %v", got["title"])
	}

	resp = doRequest(t, "PUT", server.URL+"/api/v1/anecdotes/nope", "test_artist_token", update)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404 for unknown id, got %d", resp.StatusCode)
	}
	body = decodeBody(t, resp)
	if body["status"] != models.StatusNotFound {
		t.Errorf("expected status not_found, got %v", body["status"])
	}
}

func TestDeleteAnecdote(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	create := `{"id":"first-set","date":"2001-06-15","title":"First Set","story":"Two crates."}`
	resp := doRequest(t, "POST", server.URL+"/api/v1/anecdotes", "test_artist_token", create)
	resp.Body.Close()

	resp = doRequest(t, "DELETE", server.URL+"/api/v1/anecdotes/first-set", "test_artist_token", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200 on delete, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["status"] != models.StatusDeleted {
		t.Errorf("expected status deleted, got %v", body["status"])
	}

	resp = doRequest(t, "GET", server.URL+"/api/v1/anecdotes/first-set", "test_artist_token", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404 after delete, got %d", resp.StatusCode)
	}

	resp = doRequest(t, "DELETE", server.URL+"/api/v1/anecdotes/first-set", "test_artist_token", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404 on second delete, got %d", resp.StatusCode)
	}
}

// ============== Storyline Tests ==============

func TestStorylinesBeforeRebuild(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	resp := doRequest(t, "GET", server.URL+"/api/v1/storylines", "test_artist_token", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404 before any build, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["code"] != "NO_BUILD" {
		t.Errorf("expected code NO_BUILD, got %v", body["code"])
	}
}

func TestRebuildAndServeStorylines(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	seedCorpus(t, server.URL)

	resp := doRequest(t, "POST", server.URL+"/api/v1/storylines/rebuild", "test_manager_token", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200 on rebuild, got %d", resp.StatusCode)
	}
	built := decodeBody(t, resp)

	buildID, _ := built["build_id"].(string)
	if !strings.HasPrefix(buildID, "bld_") {
		t.Errorf("expected bld_ id prefix, got %v", built["build_id"])
	}
	if built["trigger"] != models.TriggerAPI {
		t.Errorf("expected trigger api, got %v", built["trigger"])
	}
	if built["item_count"] != float64(4) {
		t.Errorf("expected item count 4, got %v", built["item_count"])
	}
	storylines, _ := built["storylines"].([]interface{})
	if len(storylines) == 0 {
		t.Fatal("expected at least one storyline")
	}

	resp = doRequest(t, "GET", server.URL+"/api/v1/storylines", "test_artist_token", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200 listing storylines, got %d", resp.StatusCode)
	}
	listed := decodeBody(t, resp)
	if listed["build_id"] != buildID {
		t.Errorf("expected served build %s, got %v", buildID, listed["build_id"])
	}

	first, _ := storylines[0].(map[string]interface{})
	storylineID, _ := first["id"].(string)
	if storylineID == "" {
		t.Fatal("expected first storyline to have an id")
	}

	resp = doRequest(t, "GET", server.URL+"/api/v1/storylines/"+storylineID, "test_artist_token", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200 for storyline %s, got %d", storylineID, resp.StatusCode)
	}
	got := decodeBody(t, resp)
	if got["id"] != storylineID {
		t.Errorf("expected storyline %s, got %v", storylineID, got["id"])
	}

	resp = doRequest(t, "GET", server.URL+"/api/v1/storylines/does-not-exist", "test_artist_token", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404 for unknown storyline, got %d", resp.StatusCode)
	}
}

// ============== Synopsis Tests ==============

func TestSynopsisNotConfigured(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	resp := doRequest(t, "POST", server.URL+"/api/v1/storylines/origin-story/synopsis", "test_artist_token", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected status 503 without provider, got %d", resp.StatusCode)
	}
}

func TestSynopsisGeneration(t *testing.T) {
	fake := &fakeSynopsisProvider{}
	server, cleanup := setupTestServerWithProvider(t, fake)
	defer cleanup()

	seedCorpus(t, server.URL)

	resp := doRequest(t, "POST", server.URL+"/api/v1/storylines/rebuild", "test_artist_token", "")
	built := decodeBody(t, resp)
	storylines, _ := built["storylines"].([]interface{})
	if len(storylines) == 0 {
		t.Fatal("expected at least one storyline")
	}
	first, _ := storylines[0].(map[string]interface{})
	storylineID, _ := first["id"].(string)

	url := fmt.Sprintf("%s/api/v1/storylines/%s/synopsis", server.URL, storylineID)

	resp = doRequest(t, "POST", url, "test_artist_token", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["storyline_id"] != storylineID {
		t.Errorf("expected storyline_id %s, got %v", storylineID, body["storyline_id"])
	}
	if body["provider"] != "fake" || body["model"] != "fake-model" {
		t.Errorf("expected fake provider metadata, got %v / %v", body["provider"], body["model"])
	}
	text, _ := body["text"].(string)
	if !strings.HasPrefix(text, "A reel worth watching:") {
		t.Errorf("unexpected synopsis text: %q", text)
	}

	// Second request is served from cache without another provider call.
	resp = doRequest(t, "POST", url, "test_artist_token", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200 on cached synopsis, got %d", resp.StatusCode)
	}
	cached := decodeBody(t, resp)
	if cached["text"] != text {
		t.Errorf("expected cached text %q, got %v", text, cached["text"])
	}
	if fake.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", fake.calls)
	}

	resp = doRequest(t, "POST", server.URL+"/api/v1/storylines/does-not-exist/synopsis", "test_artist_token", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404 for unknown storyline, got %d", resp.StatusCode)
	}
}

// ============== Rate Limiter Tests ==============

func TestRateLimiterAllow(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)

	if !limiter.Allow("artist") {
		t.Error("expected first request to be allowed")
	}
	if !limiter.Allow("artist") {
		t.Error("expected second request to be allowed")
	}
	if limiter.Allow("artist") {
		t.Error("expected third request to be blocked")
	}

	// Other actors have their own window.
	if !limiter.Allow("manager") {
		t.Error("expected a different actor to be allowed")
	}
}
