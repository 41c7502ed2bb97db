package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/docsummarizer/internal/domain/document"
	"github.com/yanqian/docsummarizer/internal/domain/library"
	"github.com/yanqian/docsummarizer/internal/domain/summarizer"
	"github.com/yanqian/docsummarizer/internal/infra/config"
	apperrors "github.com/yanqian/docsummarizer/pkg/errors"
)

// DocumentLibrary stores uploads and summarizes stored documents by id.
type DocumentLibrary interface {
	Upload(ctx context.Context, req library.UploadRequest) (document.Document, error)
	Summarize(ctx context.Context, id, mode string) (summarizer.Summary, error)
	SummarizeByPage(ctx context.Context, id string) (summarizer.PageSummaries, error)
}

// Handler wires the HTTP transport to domain services.
type Handler struct {
	summarizerSvc  summarizer.Service
	library        DocumentLibrary
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(cfg *config.Config, summarySvc summarizer.Service, lib DocumentLibrary, logger *slog.Logger) *Handler {
	return &Handler{
		summarizerSvc:  summarySvc,
		library:        lib,
		maxUploadBytes: cfg.HTTP.MaxUploadBytes,
		logger:         logger.With("component", "http.handler"),
	}
}

type summaryPayload struct {
	Mode string `json:"mode"`
}

// UploadDocument stores a PDF and reports its id and chunk counts.
func (h *Handler) UploadDocument(c *gin.Context) {
	req, httpErr := h.readUpload(c)
	if httpErr != nil {
		abortWithError(c, httpErr)
		return
	}
	doc, err := h.library.Upload(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, mapDomainError(err, "failed to store document"))
		return
	}
	c.JSON(http.StatusCreated, library.UploadResponse{Document: doc.Info()})
}

// Summarize stores the uploaded PDF and summarizes it in the requested mode.
func (h *Handler) Summarize(c *gin.Context) {
	req, httpErr := h.readUpload(c)
	if httpErr != nil {
		abortWithError(c, httpErr)
		return
	}
	req.SkipPrewarm = true
	doc, err := h.library.Upload(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, mapDomainError(err, summarizer.FallbackSummary))
		return
	}
	resp, err := h.summarizerSvc.Summarize(c.Request.Context(), doc, c.PostForm("mode"))
	if err != nil {
		abortWithError(c, mapDomainError(err, summarizer.FallbackSummary))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SummarizePages stores the uploaded PDF and summarizes every chunk.
func (h *Handler) SummarizePages(c *gin.Context) {
	req, httpErr := h.readUpload(c)
	if httpErr != nil {
		abortWithError(c, httpErr)
		return
	}
	req.SkipPrewarm = true
	doc, err := h.library.Upload(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, mapDomainError(err, summarizer.PageErrorMessage))
		return
	}
	resp, err := h.summarizerSvc.SummarizeByPage(c.Request.Context(), doc)
	if err != nil {
		abortWithError(c, mapDomainError(err, summarizer.PageErrorMessage))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SummarizeDocument summarizes a stored document. The mode comes from the
// JSON body on POST and from the query string on GET.
func (h *Handler) SummarizeDocument(c *gin.Context) {
	mode := c.Query("mode")
	if c.Request.Method == http.MethodPost && c.Request.ContentLength != 0 {
		var payload summaryPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", apperrors.MessageOf(err), err))
			return
		}
		mode = payload.Mode
	}
	resp, err := h.library.Summarize(c.Request.Context(), c.Param("id"), mode)
	if err != nil {
		abortWithError(c, mapDomainError(err, summarizer.FallbackSummary))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SummarizeDocumentPages summarizes every chunk of a stored document.
func (h *Handler) SummarizeDocumentPages(c *gin.Context) {
	resp, err := h.library.SummarizeByPage(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, mapDomainError(err, summarizer.PageErrorMessage))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) readUpload(c *gin.Context) (library.UploadRequest, *HTTPError) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return library.UploadRequest{}, NewHTTPError(http.StatusBadRequest, "invalid_request", "file exceeds maximum allowed size", err)
		}
		return library.UploadRequest{}, NewHTTPError(http.StatusBadRequest, "invalid_request", "file is required", err)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return library.UploadRequest{}, NewHTTPError(http.StatusBadRequest, "invalid_request", "failed to read upload", err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return library.UploadRequest{}, NewHTTPError(http.StatusInternalServerError, "io_error", "failed to read file", err)
	}
	return library.UploadRequest{
		Filename: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Content:  data,
	}, nil
}
