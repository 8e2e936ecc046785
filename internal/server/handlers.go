package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	storypdf "github.com/alnah/go-storypdf"
	"github.com/alnah/go-storypdf/internal/metrics"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// generateOptions are optional fields read alongside the story document.
type generateOptions struct {
	FileName string                   `json:"fileName,omitempty"`
	Print    *storypdf.PrintOverrides `json:"print,omitempty"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Engine  string `json:"engine"`
	Version string `json:"version,omitempty"`
}

// handleGenerate renders the posted story to PDF.
func (s *Server) handleGenerate(c *gin.Context) {
	body, ok := s.readBody(c)
	if !ok {
		return
	}
	doc, err := storypdf.DecodeStoryBytes(body)
	if err != nil {
		s.fail(c, err)
		return
	}
	var opts generateOptions
	if err := json.Unmarshal(body, &opts); err != nil {
		s.fail(c, &storypdf.ValidationError{Reason: "invalid generate options: " + err.Error()})
		return
	}

	rec, err := s.svc.Generate(c.Request.Context(), doc, storypdf.GenerateOptions{
		FileName: opts.FileName,
		Print:    opts.Print,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// handlePreview renders the posted story to HTML in the output directory.
func (s *Server) handlePreview(c *gin.Context) {
	body, ok := s.readBody(c)
	if !ok {
		return
	}
	doc, err := storypdf.DecodeStoryBytes(body)
	if err != nil {
		s.fail(c, err)
		return
	}

	// The path is never taken from the request.
	res, err := s.svc.Preview(c.Request.Context(), doc, "")
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Stats(c.Request.Context()))
}

// handlePrune deletes artifacts older than ?maxAge, defaulting to the
// configured retention.
func (s *Server) handlePrune(c *gin.Context) {
	maxAge := s.opts.RetentionMaxAge
	if raw := c.Query("maxAge"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			c.JSON(http.StatusBadRequest, errorResponse{
				Code:    metrics.StatusValidation,
				Message: fmt.Sprintf("invalid maxAge %q: want a non-negative duration such as 24h", raw),
			})
			return
		}
		maxAge = d
	}

	res := s.svc.PruneOlderThan(c.Request.Context(), maxAge)
	status := http.StatusOK
	if !res.Success {
		status = http.StatusInternalServerError
	}
	c.JSON(status, res)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:  "ok",
		Engine:  s.svc.Engine().State().String(),
		Version: s.opts.Version,
	})
}

// readBody reads a request body capped at storypdf.MaxStoryBytes.
func (s *Server) readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, storypdf.MaxStoryBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, errorResponse{
				Code:    metrics.StatusValidation,
				Message: fmt.Sprintf("story document exceeds %d bytes", storypdf.MaxStoryBytes),
			})
			return nil, false
		}
		s.fail(c, fmt.Errorf("%w: reading request: %v", storypdf.ErrIO, err))
		return nil, false
	}
	return bytes.TrimSpace(body), true
}

// fail writes the error response matching err.
func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		requestLogger(c, s.logger).Warn("request failed", zap.Error(err))
	}
	c.AbortWithStatusJSON(status, errorResponse{
		Code:    storypdf.StatusFor(err),
		Message: err.Error(),
	})
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	switch storypdf.StatusFor(err) {
	case metrics.StatusValidation:
		return http.StatusBadRequest
	case metrics.StatusCanceled:
		return http.StatusGatewayTimeout
	case metrics.StatusRenderError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
