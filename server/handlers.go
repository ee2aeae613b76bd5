package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ardnew/maillist/lang"
)

// maxBodyBytes limits the size of POSTed expressions.
const maxBodyBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

// handleEval evaluates the expression in the path, or the request body for
// POST, and responds with the rendered recipient set.
func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	input, err := expression(w, r)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)

		return
	}

	var filter *lang.Filter

	if where := r.URL.Query().Get("where"); where != "" {
		if filter, err = lang.CompileFilter(where); err != nil {
			s.writeError(w, r, http.StatusBadRequest, err)

			return
		}
	}

	set, err := s.eval.EvaluateWhere(r.Context(), input, filter)
	if err != nil {
		s.writeError(w, r, statusOf(err), err)

		return
	}

	writeText(w, http.StatusOK, set.String())
}

func (s *Server) handleLists(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, s.eval.Registry().Snapshot())
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	report, err := s.eval.Describe(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, statusOf(err), err)

		return
	}

	s.writeJSON(w, r, report)
}

func expression(w http.ResponseWriter, r *http.Request) (string, error) {
	if r.Method == http.MethodPost {
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			return "", lang.ErrReadInput.Wrap(err)
		}

		return string(data), nil
	}

	raw := chi.URLParam(r, "expression")

	// chi matches on the escaped path when the client encoded reserved
	// characters, so the parameter may still hold escapes.
	input, err := url.PathUnescape(raw)
	if err != nil {
		return "", lang.ErrReadInput.Wrap(err)
	}

	return input, nil
}

// statusOf maps evaluation errors to response codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, lang.ErrSyntax),
		errors.Is(err, lang.ErrInvalidName),
		errors.Is(err, lang.ErrFilterCompile),
		errors.Is(err, lang.ErrFilterEvaluate):
		return http.StatusBadRequest
	case errors.Is(err, lang.ErrMailLoop):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, code int, err error) {
	level := s.logger.DebugContext
	if code >= http.StatusInternalServerError {
		level = s.logger.ErrorContext
	}

	level(r.Context(), "request failed",
		slog.String("request_id", RequestID(r.Context())),
		slog.Int("status", code),
		slog.Any("error", err),
	)

	msg := err.Error()

	var se *lang.SyntaxError
	if errors.As(err, &se) {
		msg += "\n" + strings.TrimRight(se.Snippet(), "\n")
	}

	writeText(w, code, msg)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := lang.WriteJSON(w, v, 0); err != nil {
		s.logger.ErrorContext(r.Context(), "write response failed",
			slog.String("request_id", RequestID(r.Context())),
			slog.Any("error", err),
		)
	}
}

func writeText(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = fmt.Fprintln(w, body)
}
