package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentimentscope/backend/internal/analysis"
	"github.com/sentimentscope/backend/internal/auth"
	"github.com/sentimentscope/backend/internal/classifier"
	"github.com/sentimentscope/backend/internal/platform"
	"github.com/sentimentscope/backend/internal/sources"
	"github.com/sentimentscope/backend/internal/storage/models"
)

type fakeUserStore struct {
	byUsername map[string]*models.User
	byID       map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byUsername: make(map[string]*models.User),
		byID:       make(map[string]*models.User),
	}
}

func (f *fakeUserStore) CreateUser(user *models.User) error {
	f.byUsername[user.Username] = user
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserStore) GetUserByUsername(username string) (*models.User, error) {
	return f.byUsername[username], nil
}

func (f *fakeUserStore) GetUserByID(id string) (*models.User, error) {
	return f.byID[id], nil
}

type fakeRunStore struct {
	comments []*models.Comment
	runs     []*models.AnalysisRun
	history  []models.AnalysisRun
	failWith error
}

func (f *fakeRunStore) InsertComment(comment *models.Comment) error {
	f.comments = append(f.comments, comment)
	return nil
}

func (f *fakeRunStore) InsertAnalysisRun(run *models.AnalysisRun) error {
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeRunStore) GetAnalysisHistory(userID string, limit int) ([]models.AnalysisRun, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	if len(f.history) > limit {
		return f.history[:limit], nil
	}
	return f.history, nil
}

type stubClassifier struct{}

func (stubClassifier) Classify(_ context.Context, text string) (classifier.Result, error) {
	result := classifier.Result{Sentiment: models.SentimentNegative, Confidence: 0.8}
	if strings.Contains(text, "love") {
		result.Sentiment = models.SentimentPositive
	}
	result.PurchaseIntent = classifier.HasPurchaseIntent(text)
	return result, nil
}

type fetcherFunc func(ctx context.Context, url string) ([]string, error)

func (f fetcherFunc) Fetch(ctx context.Context, url string) ([]string, error) {
	return f(ctx, url)
}

func staticFetcher(comments []string, err error) sources.Fetcher {
	return fetcherFunc(func(context.Context, string) ([]string, error) {
		return comments, err
	})
}

type testEnv struct {
	app   *fiber.App
	store *fakeRunStore
}

func newTestApp(t *testing.T, fetchers platform.Fetchers) *testEnv {
	t.Helper()

	store := &fakeRunStore{}
	service := auth.NewService(newFakeUserStore(), auth.NewMemoryStore(time.Hour))
	engine := analysis.NewEngine(store, stubClassifier{}, nil)

	authHandler := NewAuthHandler(service)
	analyzeHandler := NewAnalyzeHandler(platform.NewRouter(fetchers), engine)
	historyHandler := NewHistoryHandler(store)

	app := fiber.New()
	api := app.Group("/api")
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)
	api.Post("/logout", authHandler.Logout)

	authed := api.Group("", auth.Middleware(service))
	authed.Get("/fetch_comments", analyzeHandler.Probe)
	authed.Post("/fetch_comments", analyzeHandler.Analyze)
	authed.Get("/history", historyHandler.GetHistory)

	return &testEnv{app: app, store: store}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	var parsed map[string]any
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &parsed))
	return resp, parsed
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()

	creds := map[string]string{"username": "alice", "password": "s3cret"}
	resp, _ := e.do(t, http.MethodPost, "/api/register", "", creds)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, body := e.do(t, http.MethodPost, "/api/login", "", creds)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRegisterLoginLogout(t *testing.T) {
	env := newTestApp(t, platform.Fetchers{})
	token := env.login(t)

	resp, body := env.do(t, http.MethodGet, "/api/fetch_comments", token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "API is working! Use POST to fetch comments.", body["message"])
	assert.Equal(t, "alice", body["user"])

	resp, body = env.do(t, http.MethodPost, "/api/logout", token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Logout successful", body["message"])

	// The revoked token no longer authenticates.
	resp, body = env.do(t, http.MethodGet, "/api/fetch_comments", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Authentication required. Please login first.", body["error"])
}

func TestRegisterDuplicate(t *testing.T) {
	env := newTestApp(t, platform.Fetchers{})
	creds := map[string]string{"username": "alice", "password": "s3cret"}

	resp, _ := env.do(t, http.MethodPost, "/api/register", "", creds)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, body := env.do(t, http.MethodPost, "/api/register", "", creds)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "User already exists", body["error"])
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestApp(t, platform.Fetchers{})

	resp, body := env.do(t, http.MethodPost, "/api/login",
		"", map[string]string{"username": "ghost", "password": "nope"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", body["error"])
}

func TestAnalyzeRequiresAuth(t *testing.T) {
	env := newTestApp(t, platform.Fetchers{})

	resp, body := env.do(t, http.MethodPost, "/api/fetch_comments",
		"", map[string]string{"url": "https://youtu.be/abc"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Authentication required. Please login first.", body["error"])
}

func TestAnalyzeMissingURL(t *testing.T) {
	env := newTestApp(t, platform.Fetchers{})
	token := env.login(t)

	resp, body := env.do(t, http.MethodPost, "/api/fetch_comments",
		token, map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "URL is required", body["error"])
}

func TestAnalyzeUnsupportedPlatform(t *testing.T) {
	env := newTestApp(t, platform.Fetchers{})
	token := env.login(t)

	resp, body := env.do(t, http.MethodPost, "/api/fetch_comments",
		token, map[string]string{"url": "https://example.com/post/1"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Unsupported platform", body["error"])
}

func TestAnalyzeSuccess(t *testing.T) {
	comments := []string{
		"I will buy this!",
		"Terrible product",
		"Absolutely love it, 5 stars",
	}
	env := newTestApp(t, platform.Fetchers{
		Ecommerce: staticFetcher(comments, nil),
	})
	token := env.login(t)

	resp, body := env.do(t, http.MethodPost, "/api/fetch_comments",
		token, map[string]string{"url": "https://www.amazon.in/dp/B0ABC"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, 33.33, body["positive_percent"])
	assert.Equal(t, 66.67, body["negative_percent"])
	assert.Equal(t, 33.33, body["purchase_intent_percent"])
	assert.Equal(t, float64(3), body["total_comments"])
	assert.Equal(t, "E-commerce", body["platform"])

	require.Len(t, env.store.runs, 1)
	assert.Equal(t, "https://www.amazon.in/dp/B0ABC", env.store.runs[0].URL)
}

func TestAnalyzeFetchErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Invalid URL",
			err:      sources.ErrInvalidURL,
			expected: "Invalid Instagram URL",
		},
		{
			name:     "No comments",
			err:      sources.ErrNoComments,
			expected: "No comments found",
		},
		{
			name:     "Other failure",
			err:      errors.New("error fetching comments: status 403"),
			expected: "error fetching comments: status 403",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestApp(t, platform.Fetchers{
				Instagram: staticFetcher(nil, tt.err),
			})
			token := env.login(t)

			resp, body := env.do(t, http.MethodPost, "/api/fetch_comments",
				token, map[string]string{"url": "https://www.instagram.com/p/Cabc123/"})
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.expected, body["error"])
		})
	}
}

func TestAnalyzeEmptyFetchReturnsZeroSummary(t *testing.T) {
	env := newTestApp(t, platform.Fetchers{
		Twitter: staticFetcher(nil, nil),
	})
	token := env.login(t)

	resp, body := env.do(t, http.MethodPost, "/api/fetch_comments",
		token, map[string]string{"url": "https://twitter.com/a/status/1"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, float64(0), body["total_comments"])
	assert.Equal(t, float64(0), body["positive_percent"])
	assert.Empty(t, env.store.runs)
}

func TestGetHistory(t *testing.T) {
	env := newTestApp(t, platform.Fetchers{})
	env.store.history = []models.AnalysisRun{
		{
			ID:              "run-2",
			URL:             "https://youtu.be/later",
			Platform:        "YouTube",
			PositivePercent: 80,
			TotalComments:   10,
			CreatedAt:       time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC),
		},
		{
			ID:            "run-1",
			URL:           "https://youtu.be/earlier",
			Platform:      "YouTube",
			TotalComments: 4,
			CreatedAt:     time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		},
	}
	token := env.login(t)

	resp, body := env.do(t, http.MethodGet, "/api/history", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	history, ok := body["history"].([]any)
	require.True(t, ok)
	require.Len(t, history, 2)

	first, ok := history[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "run-2", first["id"])
	assert.Equal(t, "2024-03-02T09:00:00Z", first["created_at"])
}

func TestGetHistoryStoreError(t *testing.T) {
	env := newTestApp(t, platform.Fetchers{})
	env.store.failWith = errors.New("database is locked")
	token := env.login(t)

	resp, body := env.do(t, http.MethodGet, "/api/history", token, nil)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Failed to fetch history: database is locked", body["error"])
}
