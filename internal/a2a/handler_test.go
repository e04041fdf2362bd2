package a2a

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/BerylCAtieno/marketing-asset-agent/internal/assets"
	"github.com/BerylCAtieno/marketing-asset-agent/internal/campaign"
	"github.com/BerylCAtieno/marketing-asset-agent/internal/models"
	"github.com/BerylCAtieno/marketing-asset-agent/internal/research"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingGenerator struct {
	calls         int
	req           models.GenerationRequest
	referenceText string
	inner         BatchGenerator
}

func (r *recordingGenerator) Generate(ctx context.Context, req models.GenerationRequest, ref string) models.GenerationResult {
	r.calls++
	r.req, r.referenceText = req, ref
	return r.inner.Generate(ctx, req, ref)
}

func newTestRouter(t *testing.T) (*gin.Engine, *recordingGenerator) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	orch := campaign.NewOrchestrator(
		research.NewSynthesizer(nil, time.Second, logger),
		assets.NewSynthesizer(nil, time.Second, logger),
		campaign.NewAssembler(""),
	)
	gen := &recordingGenerator{inner: campaign.NewService(orch, nil, logger)}

	r := gin.New()
	NewA2AHandler(gen, Options{BaseURL: "https://agents.example.com/", Version: "1.2.3", MaxBodyBytes: 64 << 10}, logger).Mount(r)
	return r, gen
}

func post(t *testing.T, r http.Handler, body string) JSONRPCResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/a2a/marketing", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var resp JSONRPCResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func decodeTask(t *testing.T, resp JSONRPCResponse) TaskResult {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected rpc error %+v", resp.Error)
	}
	raw, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatal(err)
	}
	var task TaskResult
	if err := json.Unmarshal(raw, &task); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	return task
}

func TestMessageSendWithDataPart(t *testing.T) {
	r, gen := newTestRouter(t)
	body := `{
		"jsonrpc": "2.0",
		"id": "req-1",
		"method": "message/send",
		"params": {
			"message": {
				"kind": "message",
				"role": "user",
				"taskId": "task-9",
				"parts": [{"kind": "data", "data": {"product_name": "FocusFlow", "niche": "productivity", "landing_url": "https://focusflow.app", "variants_per_platform": 2, "reference_text": "Timer app"}}]
			}
		}
	}`

	resp := post(t, r, body)
	if resp.ID != "req-1" {
		t.Errorf("id = %v", resp.ID)
	}
	task := decodeTask(t, resp)
	if task.ID != "task-9" || task.Status.State != StateCompleted {
		t.Fatalf("task = %+v", task)
	}
	if gen.calls != 1 || gen.req.VariantsPerPlatform != 2 || gen.referenceText != "Timer app" {
		t.Errorf("generator saw %+v / %q", gen.req, gen.referenceText)
	}
	if len(task.Artifacts) != 2 {
		t.Fatalf("got %d artifacts", len(task.Artifacts))
	}

	assetsPart := task.Artifacts[0].Parts[0]
	if assetsPart.Kind != "data" {
		t.Fatalf("assets artifact kind = %q", assetsPart.Kind)
	}
	var result models.GenerationResult
	if err := json.Unmarshal(assetsPart.Data, &result); err != nil {
		t.Fatalf("decode assets artifact: %v", err)
	}
	if len(result.Assets) != 10 || result.Status != models.StatusSuccess {
		t.Errorf("artifact result has %d assets, status %q", len(result.Assets), result.Status)
	}

	briefPart := task.Artifacts[1].Parts[0]
	if briefPart.Kind != "text" || !strings.Contains(briefPart.Text, "# Campaign Brief: FocusFlow") {
		t.Errorf("brief artifact = %+v", briefPart)
	}
}

func TestAgentTaskWithJSONText(t *testing.T) {
	r, gen := newTestRouter(t)
	body := `{"jsonrpc":"2.0","id":7,"method":"agent/task","params":{"message":{"kind":"message","role":"user","parts":[{"kind":"text","text":"Please run {\"product_name\":\"FocusFlow\",\"niche\":\"productivity\",\"landing_url\":\"https://focusflow.app\",\"variants_per_platform\":1} thanks"}]}}}`

	task := decodeTask(t, post(t, r, body))
	if task.Status.State != StateCompleted || task.ID == "" {
		t.Fatalf("task = %+v", task)
	}
	if gen.req.ProductName != "FocusFlow" {
		t.Errorf("product = %q", gen.req.ProductName)
	}
}

func TestHistoryDataPart(t *testing.T) {
	r, gen := newTestRouter(t)
	body := `{"jsonrpc":"2.0","id":"h","method":"message/send","params":{"message":{"kind":"message","role":"user","parts":[{"kind":"data","data":[{"kind":"text","text":"<p>{\"product_name\":\"Old\",\"niche\":\"x\",\"landing_url\":\"https://old.example\"}</p>"},{"kind":"text","text":"<p>{\"product_name\":\"FocusFlow\",\"niche\":\"productivity\",\"landing_url\":\"https://focusflow.app\",\"variants_per_platform\":1}</p>"}]}]}}}`

	task := decodeTask(t, post(t, r, body))
	if task.Status.State != StateCompleted {
		t.Fatalf("state = %q", task.Status.State)
	}
	if gen.req.ProductName != "FocusFlow" {
		t.Errorf("used %q, want the latest history entry", gen.req.ProductName)
	}
}

func TestInvalidRequestFailsTask(t *testing.T) {
	tests := []struct {
		name  string
		parts string
	}{
		{"plain prose", `[{"kind":"text","text":"make me some tweets"}]`},
		{"missing landing url", `[{"kind":"data","data":{"product_name":"FocusFlow","niche":"productivity"}}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, gen := newTestRouter(t)
			body := `{"jsonrpc":"2.0","id":"x","method":"message/send","params":{"message":{"kind":"message","role":"user","parts":` + tt.parts + `}}}`

			task := decodeTask(t, post(t, r, body))
			if task.Status.State != StateFailed {
				t.Fatalf("state = %q", task.Status.State)
			}
			if task.Status.Message == nil || task.Status.Message.Parts[0].Text == "" {
				t.Error("failed task carries no explanation")
			}
			if gen.calls != 0 {
				t.Error("generator ran for an invalid request")
			}
		})
	}
}

func TestRPCErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"garbage", `not json`, CodeParseError},
		{"wrong version", `{"jsonrpc":"1.0","id":"a","method":"message/send","params":{}}`, CodeInvalidRequest},
		{"unknown method", `{"jsonrpc":"2.0","id":"a","method":"tasks/cancel","params":{}}`, CodeMethodNotFound},
		{"bad params", `{"jsonrpc":"2.0","id":"a","method":"message/send","params":{"message":"hi"}}`, CodeInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRouter(t)
			resp := post(t, r, tt.body)
			if resp.Error == nil || resp.Error.Code != tt.code {
				t.Fatalf("error = %+v, want code %d", resp.Error, tt.code)
			}
		})
	}
}

func TestOversizedBodyRejected(t *testing.T) {
	r, gen := newTestRouter(t)
	text := strings.Repeat("{", 128<<10)
	body := `{"jsonrpc":"2.0","id":"big","method":"message/send","params":{"message":{"role":"user","parts":[{"kind":"text","text":"` + text + `"}]}}}`

	resp := post(t, r, body)
	if resp.Error == nil || resp.Error.Code != CodeInvalidRequest {
		t.Fatalf("error = %+v, want code %d", resp.Error, CodeInvalidRequest)
	}
	if gen.calls != 0 {
		t.Fatalf("generator ran %d times for an oversized body", gen.calls)
	}
}

func TestUnbalancedTextPartFailsTask(t *testing.T) {
	r, gen := newTestRouter(t)
	text := strings.Repeat("{", 32<<10)
	body := `{"jsonrpc":"2.0","id":"open","method":"message/send","params":{"message":{"role":"user","parts":[{"kind":"text","text":"` + text + `"}]}}}`

	task := decodeTask(t, post(t, r, body))
	if task.Status.State != StateFailed {
		t.Fatalf("state = %q, want %q", task.Status.State, StateFailed)
	}
	if gen.calls != 0 {
		t.Fatalf("generator ran %d times", gen.calls)
	}
}

func TestDirectMessage(t *testing.T) {
	r, gen := newTestRouter(t)
	body := `{"message":{"kind":"message","role":"user","parts":[{"kind":"data","data":{"product_name":"FocusFlow","niche":"productivity","landing_url":"https://focusflow.app","variants_per_platform":1}}]}}`

	resp := post(t, r, body)
	if resp.ID != "direct-message" {
		t.Errorf("id = %v", resp.ID)
	}
	if task := decodeTask(t, resp); task.Status.State != StateCompleted || gen.calls != 1 {
		t.Fatalf("task = %+v", task)
	}
}

func TestServeAgentCard(t *testing.T) {
	r, _ := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/.well-known/agent.json", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var card AgentCard
	if err := json.Unmarshal(w.Body.Bytes(), &card); err != nil {
		t.Fatal(err)
	}
	if card.URL != "https://agents.example.com/a2a/marketing" {
		t.Errorf("url = %q", card.URL)
	}
	if card.Version != "1.2.3" {
		t.Errorf("version = %q", card.Version)
	}
	if len(card.Skills) != 1 || card.Skills[0].ID != "generate-marketing-assets" {
		t.Errorf("skills = %+v", card.Skills)
	}
}

func TestAgentCardFallsBackToRequestHost(t *testing.T) {
	h := NewA2AHandler(nil, Options{}, zaptest.NewLogger(t))
	req := httptest.NewRequest(http.MethodGet, "/.well-known/agent.json", nil)
	req.Host = "localhost:8080"
	if got := h.AgentCard(req).URL; got != "http://localhost:8080/a2a/marketing" {
		t.Fatalf("url = %q", got)
	}
}
