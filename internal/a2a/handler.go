package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BerylCAtieno/marketing-asset-agent/internal/brief"
	"github.com/BerylCAtieno/marketing-asset-agent/internal/llm"
	"github.com/BerylCAtieno/marketing-asset-agent/internal/models"
)

// BatchGenerator produces a complete result for an accepted request.
type BatchGenerator interface {
	Generate(ctx context.Context, req models.GenerationRequest, referenceText string) models.GenerationResult
}

// DefaultMaxBodyBytes caps a JSON-RPC request when Options leaves it unset.
const DefaultMaxBodyBytes int64 = 10 << 20

// Options configures an A2AHandler.
type Options struct {
	// BaseURL is the public address advertised in the agent card. Empty
	// means derive it from the request host.
	BaseURL string
	// Version is reported in the agent card.
	Version      string
	MaxBodyBytes int64
}

type A2AHandler struct {
	gen     BatchGenerator
	baseURL string
	version string
	maxBody int64
	logger  *zap.Logger
}

func NewA2AHandler(gen BatchGenerator, opts Options, logger *zap.Logger) *A2AHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &A2AHandler{
		gen:     gen,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		version: opts.Version,
		maxBody: opts.MaxBodyBytes,
		logger:  logger.Named("a2a"),
	}
}

// Mount registers the agent card and the JSON-RPC endpoint.
func (h *A2AHandler) Mount(r gin.IRouter) {
	r.GET("/.well-known/agent.json", h.ServeAgentCard)
	r.POST("/a2a/marketing", h.HandleMarketing)
}

// HandleMarketing processes A2A messages
func (h *A2AHandler) HandleMarketing(c *gin.Context) {
	bodyBytes, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Warn("request body too large", zap.Int64("limit", tooLarge.Limit))
			h.sendErrorResponse(c, nil, fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit), CodeInvalidRequest)
			return
		}
		h.logger.Error("failed to read request body", zap.Error(err))
		h.sendErrorResponse(c, nil, "Failed to read request body", CodeParseError)
		return
	}

	var rpcReq JSONRPCRequest
	if err := json.Unmarshal(bodyBytes, &rpcReq); err != nil || rpcReq.Method == "" {
		// Some clients post the message params without the JSON-RPC wrapper.
		h.handleDirectMessage(c, bodyBytes)
		return
	}

	h.logger.Debug("rpc request",
		zap.Any("id", rpcReq.ID),
		zap.String("method", rpcReq.Method))

	if rpcReq.JSONRPC != "2.0" {
		h.sendErrorResponse(c, rpcReq.ID, "Invalid JSON-RPC version", CodeInvalidRequest)
		return
	}

	switch rpcReq.Method {
	case "agent/task", "message/send":
		h.handleTask(c, rpcReq)
	default:
		h.sendErrorResponse(c, rpcReq.ID, fmt.Sprintf("Method not found: %s", rpcReq.Method), CodeMethodNotFound)
	}
}

// handleDirectMessage handles a message without the JSON-RPC wrapper
func (h *A2AHandler) handleDirectMessage(c *gin.Context, bodyBytes []byte) {
	var msgParams MessageParams
	if err := json.Unmarshal(bodyBytes, &msgParams); err != nil || len(msgParams.Message.Parts) == 0 {
		h.sendErrorResponse(c, nil, "Invalid request format", CodeParseError)
		return
	}

	const id = "direct-message"
	h.sendSuccessResponse(c, id, h.runTask(c.Request.Context(), id, msgParams.Message))
}

func (h *A2AHandler) handleTask(c *gin.Context, rpcReq JSONRPCRequest) {
	var msgParams MessageParams
	if err := json.Unmarshal(rpcReq.Params, &msgParams); err != nil {
		h.logger.Warn("invalid params", zap.Error(err))
		h.sendErrorResponse(c, rpcReq.ID, "Invalid parameters", CodeInvalidParams)
		return
	}

	taskID := msgParams.Message.TaskID
	if taskID == "" {
		taskID = uuid.New().String()
	}
	h.sendSuccessResponse(c, rpcReq.ID, h.runTask(c.Request.Context(), taskID, msgParams.Message))
}

func (h *A2AHandler) runTask(ctx context.Context, taskID string, msg A2AMessage) TaskResult {
	req, referenceText, err := extractRequest(msg)
	if err != nil {
		h.logger.Warn("no usable generation request in message", zap.Error(err))
		return h.createErrorTaskResult(taskID, msg.ContextID, err.Error())
	}

	h.logger.Info("generating assets",
		zap.String("task_id", taskID),
		zap.String("product", req.ProductName))

	result := h.gen.Generate(ctx, req, referenceText)
	task, err := h.createSuccessTaskResult(taskID, msg.ContextID, req, result)
	if err != nil {
		h.logger.Error("failed to build task result", zap.Error(err))
		return h.createErrorTaskResult(taskID, msg.ContextID, "Failed to encode generated assets")
	}
	return task
}

// ServeAgentCard describes this agent to A2A clients.
func (h *A2AHandler) ServeAgentCard(c *gin.Context) {
	c.JSON(http.StatusOK, h.AgentCard(c.Request))
}

func (h *A2AHandler) AgentCard(r *http.Request) AgentCard {
	base := h.baseURL
	if base == "" && r != nil {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s", scheme, r.Host)
	}
	return AgentCard{
		Name:               "Marketing Asset Agent",
		Description:        "Generates platform-tailored social media assets (captions, hashtags, image prompts, calls to action and posting times) for a product across Twitter, Pinterest, Instagram, LinkedIn and Reddit.",
		URL:                base + "/a2a/marketing",
		Version:            h.version,
		ProtocolVersion:    "0.3.0",
		Capabilities:       AgentCapabilities{},
		DefaultInputModes:  []string{"application/json", "text/plain"},
		DefaultOutputModes: []string{"application/json", "text/markdown"},
		Skills: []AgentSkill{
			{
				ID:          "generate-marketing-assets",
				Name:        "Generate marketing assets",
				Description: "Researches a product's niche and writes several creative variants per social platform, respecting each platform's character and hashtag limits.",
				Tags:        []string{"marketing", "social-media", "copywriting"},
				Examples: []string{
					`{"product_name":"FocusFlow","niche":"productivity","landing_url":"https://focusflow.app","variants_per_platform":2}`,
				},
			},
		},
	}
}

// extractRequest finds the generation request in a message: a data part
// holding the request object wins, then JSON embedded in text parts or in
// the latest text entry of a conversation-history data part.
func extractRequest(msg A2AMessage) (models.GenerationRequest, string, error) {
	var texts []string
	for _, part := range msg.Parts {
		switch part.Kind {
		case "data":
			data := bytes.TrimSpace(part.Data)
			if len(data) == 0 {
				continue
			}
			if data[0] == '{' {
				return parsePayload(data)
			}
			if text := latestHistoryText(data); text != "" {
				texts = append(texts, text)
			}
		case "text":
			if t := strings.TrimSpace(part.Text); t != "" {
				texts = append(texts, t)
			}
		}
	}

	for _, text := range texts {
		if obj, err := llm.ExtractJSONObject(text); err == nil {
			return parsePayload([]byte(obj))
		}
	}
	return models.GenerationRequest{}, "", &models.InputError{
		Field:  "message",
		Reason: "send a JSON object with product_name, niche and landing_url as a data part or text",
	}
}

func parsePayload(data []byte) (models.GenerationRequest, string, error) {
	req, err := models.ParseRequest(data)
	if err != nil {
		return models.GenerationRequest{}, "", err
	}
	var env struct {
		ReferenceText string `json:"reference_text"`
	}
	_ = json.Unmarshal(data, &env)
	return req, env.ReferenceText, nil
}

// latestHistoryText returns the newest non-empty text entry of a history array.
func latestHistoryText(data []byte) string {
	var history []struct {
		Kind string `json:"kind"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &history); err != nil {
		return ""
	}
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Kind != "text" {
			continue
		}
		text := strings.TrimSpace(history[i].Text)
		text = strings.ReplaceAll(text, "<p>", "")
		text = strings.ReplaceAll(text, "</p>", "")
		if text = strings.TrimSpace(text); text != "" {
			return text
		}
	}
	return ""
}

func (h *A2AHandler) createSuccessTaskResult(taskID, contextID string, req models.GenerationRequest, result models.GenerationResult) (TaskResult, error) {
	responseText := brief.Markdown(req, result)
	dataPart, err := DataPart(result)
	if err != nil {
		return TaskResult{}, err
	}

	return TaskResult{
		ID:        taskID,
		ContextID: contextID,
		Kind:      "task",
		Status: TaskStatus{
			State:     StateCompleted,
			Timestamp: Timestamp(),
			Message: &A2AMessage{
				Kind:      "message",
				Role:      RoleAgent,
				MessageID: uuid.New().String(),
				TaskID:    taskID,
				Parts: []MessagePart{
					TextPart(fmt.Sprintf("Generated %d assets for %s.", len(result.Assets), req.ProductName)),
				},
			},
		},
		Artifacts: []Artifact{
			{
				ArtifactID: uuid.New().String(),
				Name:       "Marketing Assets",
				Parts:      []MessagePart{dataPart},
			},
			{
				ArtifactID: uuid.New().String(),
				Name:       "Campaign Brief",
				Parts:      []MessagePart{TextPart(responseText)},
			},
		},
	}, nil
}

func (h *A2AHandler) createErrorTaskResult(taskID, contextID, errorMsg string) TaskResult {
	return TaskResult{
		ID:        taskID,
		ContextID: contextID,
		Kind:      "task",
		Status: TaskStatus{
			State:     StateFailed,
			Timestamp: Timestamp(),
			Message: &A2AMessage{
				Kind:      "message",
				Role:      RoleAgent,
				MessageID: uuid.New().String(),
				TaskID:    taskID,
				Parts: []MessagePart{
					TextPart(errorMsg),
				},
			},
		},
	}
}

func (h *A2AHandler) sendSuccessResponse(c *gin.Context, id any, result TaskResult) {
	c.JSON(http.StatusOK, JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

func (h *A2AHandler) sendErrorResponse(c *gin.Context, id any, message string, code int) {
	c.JSON(http.StatusOK, JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &RPCError{
			Code:    code,
			Message: message,
		},
	})
}
