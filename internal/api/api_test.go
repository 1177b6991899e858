package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindstash/mindstash/internal/capture"
	"github.com/mindstash/mindstash/internal/classify"
	"github.com/mindstash/mindstash/internal/extract"
	"github.com/mindstash/mindstash/internal/grouping"
	"github.com/mindstash/mindstash/internal/inbox"
	"github.com/mindstash/mindstash/internal/model"
	"github.com/mindstash/mindstash/internal/projects"
	"github.com/mindstash/mindstash/internal/store/storetest"
)

// projectRepo adapts the fake store to the narrow handler interface.
type projectRepo struct{ fake *storetest.Fake }

func (p projectRepo) ListProjects(ctx context.Context) ([]*model.Project, error) {
	return p.fake.Projects().List(ctx)
}
func (p projectRepo) DeleteProject(ctx context.Context, id string) error {
	return p.fake.Projects().Delete(ctx, id)
}

func newTestServer(t *testing.T) (*httptest.Server, *storetest.Fake) {
	t.Helper()
	fake := storetest.New()
	log := zerolog.Nop()
	offline := classify.NewOffline(nil)

	captureSvc := capture.New(fake, nil, nil, offline, log)
	extractor := extract.New(nil, offline, 5, log)
	processor := inbox.NewProcessor(fake, extractor, log)
	groupingSvc := grouping.New(fake, nil, offline, 5*time.Minute, 0.30, log)
	projectSvc := projects.New(fake, nil, log)

	router := NewRouter(Deps{
		Capture:     captureSvc,
		Inbox:       processor,
		Grouping:    groupingSvc,
		Projects:    projectSvc,
		ProjectRepo: projectRepo{fake},
		HealthPing:  fake.HealthPing,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, fake
}

func doJSON(t *testing.T, method, url string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestCaptureEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/items", map[string]string{
		"rawInput": "need to buy groceries and call the dentist",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	it := decode[model.Item](t, resp)
	assert.NotEmpty(t, it.ID)
	assert.Equal(t, model.CategoryNote, it.Category)
	assert.Equal(t, model.StatusInbox, it.Status)
	assert.True(t, it.PendingAIProcessing)
}

func TestCaptureRejectsEmptyBody(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/items", map[string]string{"rawInput": ""})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestItemCRUDAndFilters(t *testing.T) {
	srv, _ := newTestServer(t)

	created := decode[model.Item](t, doJSON(t, http.MethodPost, srv.URL+"/api/items",
		map[string]string{"rawInput": "remember to stretch"}))

	resp := doJSON(t, http.MethodPatch, srv.URL+"/api/items/"+created.ID, map[string]interface{}{
		"category": "task",
		"status":   "captured",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	upd := decode[model.Item](t, resp)
	assert.Equal(t, model.CategoryTask, upd.Category)
	assert.Equal(t, model.StatusCaptured, upd.Status)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/items?status=captured&category=task", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[struct {
		Items []model.Item `json:"items"`
		Count int          `json:"count"`
	}](t, resp)
	assert.Equal(t, 1, list.Count)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/items?status=bogus", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/items/"+created.ID, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/items/"+created.ID, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestClassifyEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	created := decode[model.Item](t, doJSON(t, http.MethodPost, srv.URL+"/api/items",
		map[string]string{"rawInput": "need to renew the passport today"}))
	assert.Equal(t, model.CategoryNote, created.Category)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/items/"+created.ID+"/classify", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	it := decode[model.Item](t, resp)
	assert.Equal(t, model.CategoryTask, it.Category)
	assert.Equal(t, model.UrgencyHigh, it.Urgency)
	assert.False(t, it.PendingAIProcessing)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/items/missing/classify", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInboxProcessEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	decode[model.Item](t, doJSON(t, http.MethodPost, srv.URL+"/api/items",
		map[string]string{"rawInput": "buy milk and call the plumber"}))

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/inbox/pending", nil)
	pending := decode[struct {
		Count   int  `json:"count"`
		Running bool `json:"running"`
	}](t, resp)
	assert.Equal(t, 1, pending.Count)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/inbox/process", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode[inbox.Result](t, resp)
	assert.Equal(t, 1, res.ProcessedCount)
	assert.Equal(t, 2, res.ExtractedCount)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/inbox/pending", nil)
	pending = decode[struct {
		Count   int  `json:"count"`
		Running bool `json:"running"`
	}](t, resp)
	assert.Zero(t, pending.Count)
}

func TestGroupingEndpoints(t *testing.T) {
	srv, fake := newTestServer(t)
	ctx := context.Background()

	mk := func(raw string) *model.Item {
		it, err := fake.Items().Create(ctx, &model.Item{
			RawInput: raw, Category: model.CategoryNote, Title: raw,
			Urgency: model.UrgencyNone, Status: model.StatusInbox,
		})
		require.NoError(t, err)
		return it
	}
	a := mk("call mom at 3pm")
	b := mk("call mom about dinner")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/inbox/groups", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode[model.GroupingResult](t, resp)
	require.Len(t, res.Groups, 1)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/inbox/groups/accept", res.Groups[0])
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	merged := decode[model.Item](t, resp)
	assert.Equal(t, model.StatusCaptured, merged.Status)

	for _, src := range []*model.Item{a, b} {
		got, err := fake.Items().Get(ctx, src.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusArchived, got.Status)
	}
}

func TestProjectEndpoints(t *testing.T) {
	srv, fake := newTestServer(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := fake.Items().Create(ctx, &model.Item{
			RawInput: "x", Category: model.CategoryNote, Title: "x",
			Tags: []string{"lighthouse"}, Urgency: model.UrgencyNone, Status: model.StatusCaptured,
		})
		require.NoError(t, err)
	}

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/projects/detect", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	det := decode[model.ProjectDetection](t, resp)
	require.Len(t, det.Suggestions, 1)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/projects", det.Suggestions[0])
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	pr := decode[model.Project](t, resp)
	assert.True(t, pr.UserApproved)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/projects", nil)
	list := decode[struct {
		Projects []model.Project `json:"projects"`
		Count    int             `json:"count"`
	}](t, resp)
	assert.Equal(t, 1, list.Count)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/projects/"+pr.ID, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestReminderEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	created := decode[model.Item](t, doJSON(t, http.MethodPost, srv.URL+"/api/items",
		map[string]string{"rawInput": "submit the report"}))

	at := time.Now().Add(2 * time.Hour).UTC().Truncate(time.Second)
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/items/"+created.ID+"/reminder",
		map[string]interface{}{"at": at, "message": "report due"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	it := decode[model.Item](t, resp)
	require.NotNil(t, it.ScheduledNotification)
	assert.Equal(t, "report due", it.ScheduledNotification.Message)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/items/"+created.ID+"/reminder", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	it = decode[model.Item](t, resp)
	assert.Nil(t, it.ScheduledNotification)
}

func TestMergePreviewAndTagSuggestEndpoints(t *testing.T) {
	srv, fake := newTestServer(t)
	ctx := context.Background()

	a, err := fake.Items().Create(ctx, &model.Item{
		RawInput: "urgent doctor appointment", Category: model.CategoryTask, Title: "Doctor",
		Tags: []string{"health"}, Urgency: model.UrgencyHigh, Status: model.StatusCaptured,
	})
	require.NoError(t, err)
	b, err := fake.Items().Create(ctx, &model.Item{
		RawInput: "pick up prescription", Category: model.CategoryTask, Title: "Prescription",
		Tags: []string{"errand"}, Urgency: model.UrgencyMedium, Status: model.StatusCaptured,
	})
	require.NoError(t, err)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/items/"+a.ID+"/merge-preview",
		map[string]string{"otherId": b.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	preview := decode[model.MergePreview](t, resp)
	assert.Equal(t, "Doctor & Prescription", preview.MergedTitle)
	assert.ElementsMatch(t, []string{"health", "errand"}, preview.MergedTags)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/items/"+a.ID+"/tags/suggest", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tags := decode[struct {
		Tags []string `json:"tags"`
	}](t, resp)
	assert.Contains(t, tags.Tags, "urgent")
	assert.Contains(t, tags.Tags, "health")
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]interface{}](t, resp)
	assert.Equal(t, "healthy", body["status"])
}
