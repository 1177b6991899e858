package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindstash/mindstash/internal/model"
)

type stubLLM struct {
	reply  string
	err    error
	prompt string
}

func (s *stubLLM) Complete(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.reply, s.err
}

func newGatewayServer(t *testing.T, llm *stubLLM) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(NewHandler(llm, zerolog.Nop())))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	return resp
}

func validRequest() map[string]interface{} {
	return map[string]interface{}{
		"rawInput": "remind me to call mom at 3pm",
		"userContext": model.UserContext{
			Name: "Sam", Profession: "filmmaker", Company: "Selfmade",
			Projects: []string{"Oro Verde"},
		},
	}
}

func TestCategorizeReturnsParsedModelOutput(t *testing.T) {
	llm := &stubLLM{reply: `{"category":"reminder","title":"Call mom","urgency":"medium","confidence":0.95,"entities":{"people":["mom"]}}`}
	srv := newGatewayServer(t, llm)

	resp := postJSON(t, srv.URL+"/categorize", validRequest())
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out model.Categorization
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, model.CategoryReminder, out.Category)
	assert.Equal(t, []string{"mom"}, out.Entities.People)

	// The prompt embeds the user's profile and the transcript.
	assert.Contains(t, llm.prompt, "Sam")
	assert.Contains(t, llm.prompt, "Oro Verde")
	assert.Contains(t, llm.prompt, "call mom at 3pm")
}

func TestCategorizeRejectsMissingFields(t *testing.T) {
	srv := newGatewayServer(t, &stubLLM{reply: "{}"})
	resp := postJSON(t, srv.URL+"/categorize", map[string]string{"rawInput": "x"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCategorizeNonJSONModelOutputIs502(t *testing.T) {
	llm := &stubLLM{reply: "```json\n{\"category\":\"task\"}\n```"} // fenced, not bare JSON
	srv := newGatewayServer(t, llm)

	resp := postJSON(t, srv.URL+"/categorize", validRequest())
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestCategorizeMissingRequiredFieldsIs502(t *testing.T) {
	llm := &stubLLM{reply: `{"category":"task","urgency":"low"}`} // no title
	srv := newGatewayServer(t, llm)

	resp := postJSON(t, srv.URL+"/categorize", validRequest())
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestExtractMultiple(t *testing.T) {
	llm := &stubLLM{reply: `{"items":[{"category":"task","title":"Buy milk","tags":["errand"],"urgency":"low","confidence":0.9,"rawText":"buy milk","entities":{}}],"reasoning":"one task"}`}
	srv := newGatewayServer(t, llm)

	resp := postJSON(t, srv.URL+"/categorize/extract-multiple", validRequest())
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out model.ExtractionResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Items, 1)
	assert.Equal(t, "Buy milk", out.Items[0].Title)
}

func TestGroupThoughts(t *testing.T) {
	llm := &stubLLM{reply: `{"groups":[{"thoughtIds":["a","b"],"mergedContent":"call mom","suggestedCategory":"task","suggestedTitle":"Call mom","confidence":0.8,"reasoning":"same intent"}],"summary":"1 group"}`}
	srv := newGatewayServer(t, llm)

	resp := postJSON(t, srv.URL+"/categorize/group-thoughts", map[string]interface{}{
		"thoughts": []map[string]string{
			{"id": "a", "text": "call mom at 3pm", "createdAt": "2026-08-30T10:00:00Z"},
			{"id": "b", "text": "call mom about dinner", "createdAt": "2026-08-30T10:01:00Z"},
		},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Groups []struct {
			ThoughtIDs []string `json:"thoughtIds"`
		} `json:"groups"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Groups, 1)
	assert.Equal(t, []string{"a", "b"}, out.Groups[0].ThoughtIDs)
}

func TestMergePreview(t *testing.T) {
	llm := &stubLLM{reply: `{"mergedTitle":"Call mom","mergedRawInput":"call mom at 3pm about dinner","mergedTags":["family"],"suggestedCategory":"task","confidence":0.85,"reasoning":"same person"}`}
	srv := newGatewayServer(t, llm)

	resp := postJSON(t, srv.URL+"/categorize/merge-preview", map[string]interface{}{
		"item1": mergeItem{Title: "Call mom", RawInput: "call mom at 3pm", Category: "task", Tags: []string{"family"}},
		"item2": mergeItem{Title: "Mom dinner", RawInput: "call mom about dinner", Category: "task", Tags: []string{}},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out model.MergePreview
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Call mom", out.MergedTitle)
}

func TestLLMFailureIs502(t *testing.T) {
	llm := &stubLLM{err: assert.AnError}
	srv := newGatewayServer(t, llm)

	resp := postJSON(t, srv.URL+"/categorize", validRequest())
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestGatewayHealth(t *testing.T) {
	srv := newGatewayServer(t, &stubLLM{})
	resp, err := http.Get(srv.URL + "/categorize/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "ok", out["status"])
}
