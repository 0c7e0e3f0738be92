package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/worksheet/internal/problemgen"
	"github.com/abhisek/worksheet/internal/render"
	"github.com/abhisek/worksheet/internal/store"
	"github.com/abhisek/worksheet/internal/worksheet"
)

const defaultListLimit = 20

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) getDefaults(c *gin.Context) {
	c.JSON(http.StatusOK, s.defaults())
}

// bindSettings decodes the body over dst, which already holds defaults.
// An empty body keeps the defaults.
func bindSettings(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (s *Server) createMath(c *gin.Context) {
	settings := s.defaults().Math
	if err := bindSettings(c, &settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	local, _ := strconv.ParseBool(c.Query("local"))
	s.generate(c, worksheet.Math, func(ctx context.Context) (*worksheet.Worksheet, error) {
		if local {
			return s.gen.LocalMath(settings)
		}
		return s.gen.GenerateMath(ctx, settings)
	})
}

func (s *Server) createHanja(c *gin.Context) {
	settings := s.defaults().Hanja
	if err := bindSettings(c, &settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	s.generate(c, worksheet.Hanja, func(ctx context.Context) (*worksheet.Worksheet, error) {
		return s.gen.GenerateHanja(ctx, settings)
	})
}

func (s *Server) createEnglish(c *gin.Context) {
	settings := s.defaults().English
	if err := bindSettings(c, &settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	s.generate(c, worksheet.English, func(ctx context.Context) (*worksheet.Worksheet, error) {
		return s.gen.GenerateEnglish(ctx, settings)
	})
}

func (s *Server) generate(c *gin.Context, subject worksheet.Subject, fn func(context.Context) (*worksheet.Worksheet, error)) {
	ctx := c.Request.Context()
	sheet, err := fn(ctx)
	if err != nil {
		s.metrics.generationErrors.WithLabelValues(string(subject)).Inc()
		s.respondError(c, err, http.StatusBadGateway)
		return
	}
	s.metrics.generations.WithLabelValues(string(subject), string(sheet.Source)).Inc()

	if s.repo != nil {
		if err := s.repo.Save(ctx, sheet); err != nil {
			s.logger.WarnContext(ctx, "failed to save worksheet", "id", sheet.ID, "error", err)
		}
	}
	c.JSON(http.StatusCreated, sheet)
}

func (s *Server) listWorksheets(c *gin.Context) {
	if !s.requireRepo(c) {
		return
	}
	opts := store.QueryOpts{Limit: defaultListLimit}
	if v := c.Query("subject"); v != "" {
		subject, err := worksheet.ParseSubject(v)
		if err != nil {
			s.respondError(c, err, http.StatusInternalServerError)
			return
		}
		opts.Subject = subject
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		opts.Limit = n
	}

	items, err := s.repo.List(c.Request.Context(), opts)
	if err != nil {
		s.respondError(c, err, http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []store.WorksheetSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"worksheets": items})
}

func (s *Server) getWorksheet(c *gin.Context) {
	sheet, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sheet)
}

func (s *Server) printWorksheet(c *gin.Context) {
	sheet, ok := s.lookup(c)
	if !ok {
		return
	}
	answers, _ := strconv.ParseBool(c.Query("answers"))
	text := render.String(sheet, render.Options{AnswerKey: answers, Width: render.DefaultWidth})
	c.String(http.StatusOK, text+"\n")
}

func (s *Server) deleteWorksheet(c *gin.Context) {
	if !s.requireRepo(c) {
		return
	}
	if err := s.repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err, http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) lookup(c *gin.Context) (*worksheet.Worksheet, bool) {
	if !s.requireRepo(c) {
		return nil, false
	}
	sheet, err := s.repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err, http.StatusInternalServerError)
		return nil, false
	}
	return sheet, true
}

func (s *Server) requireRepo(c *gin.Context) bool {
	if s.repo == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "worksheet history is not enabled"})
		return false
	}
	return true
}

// respondError maps domain errors to HTTP statuses. Errors that match no
// known kind get fallback.
func (s *Server) respondError(c *gin.Context, err error, fallback int) {
	status := fallback
	switch {
	case errors.Is(err, worksheet.ErrInvalidConfig):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, problemgen.ErrNoProvider):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "status", status, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
