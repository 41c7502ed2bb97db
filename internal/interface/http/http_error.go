package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/docsummarizer/internal/domain/library"
	apperrors "github.com/yanqian/docsummarizer/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

type errorMapping struct {
	status int
	code   string
	// public keeps the domain message instead of the fallback.
	public bool
}

var domainErrors = map[string]errorMapping{
	apperrors.CodeInvalidInput:     {status: http.StatusBadRequest, code: "invalid_request", public: true},
	apperrors.CodeUnsupportedMedia: {status: http.StatusBadRequest, code: "unsupported_media", public: true},
	apperrors.CodeNotFound:         {status: http.StatusNotFound, code: "not_found", public: true},
	apperrors.CodeLLM:              {status: http.StatusBadGateway, code: "llm_error"},
	apperrors.CodeCache:            {status: http.StatusInternalServerError, code: "cache_error"},
	apperrors.CodeStorage:          {status: http.StatusInternalServerError, code: "storage_error"},
	apperrors.CodeIO:               {status: http.StatusInternalServerError, code: "io_error"},
}

// mapDomainError converts a domain failure into an HTTPError. Failures past
// validation render fallback as the client facing message.
func mapDomainError(err error, fallback string) *HTTPError {
	code := apperrors.CodeOf(err)
	mapping, ok := domainErrors[code]
	if !ok {
		return NewHTTPError(http.StatusInternalServerError, "internal_error", fallback, err)
	}
	message := fallback
	switch {
	case code == apperrors.CodeUnsupportedMedia:
		message = library.UnsupportedMediaMessage
	case mapping.public:
		message = apperrors.MessageOf(err)
	}
	return NewHTTPError(mapping.status, mapping.code, message, err)
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}
