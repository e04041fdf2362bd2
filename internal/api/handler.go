package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BerylCAtieno/marketing-asset-agent/internal/brief"
	"github.com/BerylCAtieno/marketing-asset-agent/internal/models"
)

// DefaultMaxUploadBytes caps multipart bodies when no limit is configured.
const DefaultMaxUploadBytes = 10 << 20

// Output formats accepted by the format query parameter.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

type Handler struct {
	gen       BatchGenerator
	maxUpload int64
	logger    *zap.Logger
}

func NewHandler(gen BatchGenerator, maxUpload int64, logger *zap.Logger) *Handler {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{gen: gen, maxUpload: maxUpload, logger: logger.Named("generate")}
}

// HandleGenerate accepts a multipart form (data + optional file) or a JSON
// body and returns the generated batch.
func (h *Handler) HandleGenerate(c *gin.Context) {
	format, err := parseFormat(c.Query("format"))
	if err != nil {
		h.sendError(c, err)
		return
	}

	req, referenceText, err := h.readRequest(c)
	if err != nil {
		h.sendError(c, err)
		return
	}

	h.logger.Info("generating assets",
		zap.String("product", req.ProductName),
		zap.String("niche", req.Niche),
		zap.Int("variants_per_platform", req.VariantsPerPlatform),
		zap.Int("reference_chars", len([]rune(referenceText))))

	result := h.gen.Generate(c.Request.Context(), req, referenceText)

	switch format {
	case FormatMarkdown:
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(brief.Markdown(req, result)))
	case FormatHTML:
		html, err := brief.HTML(brief.Markdown(req, result))
		if err != nil {
			h.sendError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
	default:
		c.JSON(http.StatusOK, result)
	}
}

func parseFormat(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatHTML:
		return FormatHTML, nil
	default:
		return "", &models.InputError{Field: "format", Reason: fmt.Sprintf("unsupported format %q", raw)}
	}
}

func (h *Handler) readRequest(c *gin.Context) (models.GenerationRequest, string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	if c.ContentType() == gin.MIMEJSON {
		return h.readJSON(c)
	}
	return h.readForm(c)
}

// jsonEnvelope carries the optional reference text next to the request fields.
type jsonEnvelope struct {
	ReferenceText string `json:"reference_text"`
}

func (h *Handler) readJSON(c *gin.Context) (models.GenerationRequest, string, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return models.GenerationRequest{}, "", &models.InputError{Field: "body", Reason: "failed to read request body", Err: err}
	}
	req, err := models.ParseRequest(body)
	if err != nil {
		return models.GenerationRequest{}, "", err
	}
	var env jsonEnvelope
	// Already known to be valid JSON.
	_ = json.Unmarshal(body, &env)
	return req, env.ReferenceText, nil
}

func (h *Handler) readForm(c *gin.Context) (models.GenerationRequest, string, error) {
	if err := c.Request.ParseMultipartForm(h.maxUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return models.GenerationRequest{}, "", &models.InputError{Field: "data", Reason: "failed to parse form", Err: err}
	}

	req, err := models.ParseRequest([]byte(c.Request.FormValue("data")))
	if err != nil {
		return models.GenerationRequest{}, "", err
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return req, "", nil
		}
		return models.GenerationRequest{}, "", &models.InputError{Field: "file", Reason: "failed to read attachment", Err: err}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return models.GenerationRequest{}, "", &models.InputError{Field: "file", Reason: "failed to read attachment", Err: err}
	}
	return req, ReferenceText(header.Filename, header.Header.Get("Content-Type"), data), nil
}

// sendError reports failures as {"error": message} with status 500, the only
// failure shape callers see.
func (h *Handler) sendError(c *gin.Context, err error) {
	if models.IsInputError(err) {
		h.logger.Warn("rejected generation request", zap.Error(err))
	} else {
		h.logger.Error("generation request failed", zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
