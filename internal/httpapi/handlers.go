package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docchat/internal/domain"
	"docchat/internal/extractor"
	"docchat/internal/index"
	"docchat/internal/logger"
	"docchat/internal/render"
	"docchat/internal/service"
	"docchat/internal/session"
)

// ChatService is the pipeline the handlers drive.
type ChatService interface {
	Process(ctx context.Context, sess *session.Session, docs []domain.Document) (*service.ProcessReport, error)
	Ask(ctx context.Context, sess *session.Session, question string) ([]domain.Turn, error)
}

type SessionHandler struct {
	log            *logger.Logger
	svc            ChatService
	sessions       *session.Manager
	maxUploadBytes int64
}

func NewSessionHandler(log *logger.Logger, svc ChatService, sessions *session.Manager, maxUploadBytes int64) *SessionHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 32 << 20
	}
	return &SessionHandler{
		log:            log.With("handler", "SessionHandler"),
		svc:            svc,
		sessions:       sessions,
		maxUploadBytes: maxUploadBytes,
	}
}

type sessionResponse struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	Ready     bool      `json:"ready"`
}

type fileErrorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type processResponse struct {
	Accepted []string            `json:"accepted"`
	Skipped  []string            `json:"skipped"`
	Errors   []fileErrorResponse `json:"errors"`
	Chunks   int                 `json:"chunks"`
	Merged   bool                `json:"merged"`
	Summary  string              `json:"summary,omitempty"`
	Messages []string            `json:"messages"`
}

type askRequest struct {
	Question string `json:"question"`
}

type historyResponse struct {
	History []domain.Turn `json:"history"`
}

func (h *SessionHandler) CreateSession(c *gin.Context) {
	s := h.sessions.Create()
	c.JSON(http.StatusCreated, sessionResponse{SessionID: s.ID, CreatedAt: s.CreatedAt, Ready: false})
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	RespondOK(c, sessionResponse{SessionID: s.ID, CreatedAt: s.CreatedAt, Ready: s.Ready()})
}

func (h *SessionHandler) EndSession(c *gin.Context) {
	err := h.sessions.End(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		RespondError(c, http.StatusNotFound, "session_not_found", service.UserMessage(err))
	case err != nil:
		h.log.Warn("end session failed", "session", c.Param("id"), "error", err)
		c.Status(http.StatusNoContent)
	default:
		c.Status(http.StatusNoContent)
	}
}

// UploadDocuments reads the multipart "files" field and processes it. Each
// part's Content-Type is its media type; parts without one fall back to the
// file extension.
func (h *SessionHandler) UploadDocuments(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	if err := c.Request.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondError(c, http.StatusRequestEntityTooLarge, "upload_too_large",
				fmt.Sprintf("Upload exceeds %d MB.", h.maxUploadBytes>>20))
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			RespondError(c, http.StatusBadRequest, "invalid_multipart_form", err.Error())
			return
		}
	}
	var headers []*multipart.FileHeader
	if c.Request.MultipartForm != nil {
		headers = c.Request.MultipartForm.File["files"]
	}
	docs := make([]domain.Document, 0, len(headers))
	for _, fh := range headers {
		doc, err := readDocument(fh)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_file", err.Error())
			return
		}
		docs = append(docs, doc)
	}

	report, err := h.svc.Process(c.Request.Context(), s, docs)
	if err != nil {
		status, code := processStatus(err)
		c.AbortWithStatusJSON(status, gin.H{
			"error":  APIError{Message: service.UserMessage(err), Code: code},
			"report": toProcessResponse(report),
		})
		return
	}
	RespondOK(c, toProcessResponse(report))
}

func (h *SessionHandler) AskQuestion(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", "request body must be a JSON object with a question")
		return
	}
	turns, err := h.svc.Ask(c.Request.Context(), s, req.Question)
	if err != nil {
		status, code := askStatus(err)
		RespondError(c, status, code, service.UserMessage(err))
		return
	}
	RespondOK(c, historyResponse{History: turns})
}

func (h *SessionHandler) GetHistory(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	RespondOK(c, historyResponse{History: s.History()})
}

func (h *SessionHandler) GetTranscript(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(render.Page("Chat with multiple PDFs & Excel", s.History())))
}

func (h *SessionHandler) lookup(c *gin.Context) (*session.Session, bool) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "session_not_found", service.UserMessage(err))
		return nil, false
	}
	return s, true
}

func readDocument(fh *multipart.FileHeader) (domain.Document, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.Document{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return domain.Document{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	mt := fh.Header.Get("Content-Type")
	if mt == "" || mt == "application/octet-stream" {
		mt = extractor.MediaTypeForPath(fh.Filename)
	}
	return domain.Document{Name: fh.Filename, MediaType: mt, Content: data}, nil
}

func toProcessResponse(r *service.ProcessReport) processResponse {
	out := processResponse{Accepted: []string{}, Skipped: []string{}, Errors: []fileErrorResponse{}, Messages: []string{}}
	if r == nil {
		return out
	}
	out.Accepted = append(out.Accepted, r.Accepted...)
	out.Skipped = append(out.Skipped, r.Skipped...)
	for _, fe := range r.Errors {
		out.Errors = append(out.Errors, fileErrorResponse{Name: fe.Name, Message: service.FileErrorMessage(fe)})
	}
	out.Chunks = r.Chunks
	out.Merged = r.Merged
	out.Summary = r.Summary
	out.Messages = append(out.Messages, service.ReportLines(r)...)
	return out
}

func processStatus(err error) (int, string) {
	var be *index.BuildError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, domain.ErrNoDocuments):
		return http.StatusBadRequest, "no_documents"
	case errors.Is(err, domain.ErrNoText):
		return http.StatusUnprocessableEntity, "no_text"
	case errors.As(err, &be):
		return http.StatusBadGateway, "index_build_failed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout, "cancelled"
	default:
		return http.StatusInternalServerError, "process_failed"
	}
}

func askStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, domain.ErrNotInitialized):
		return http.StatusConflict, "not_initialized"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_question"
	case domain.IsRateLimited(err):
		return http.StatusTooManyRequests, "rate_limited"
	default:
		return http.StatusBadGateway, "provider_error"
	}
}
