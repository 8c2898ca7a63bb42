// Package server exposes signature synthesis over HTTP for build systems and
// editors that want headers without shelling out to the CLI.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/toyz/defn/internal/errors"
	"github.com/toyz/defn/internal/generator"
	"github.com/toyz/defn/internal/parser"
	"github.com/toyz/defn/internal/policy"
	"github.com/toyz/defn/internal/utils"
)

const (
	// DefaultAddr is the listen address used when none is configured
	DefaultAddr = "127.0.0.1:7420"

	// DefaultFilename names sources posted without a filename
	DefaultFilename = "input" + parser.FileExtension

	// MaxSourceSize bounds the request body
	MaxSourceSize = "2M"

	shutdownTimeout = 5 * time.Second
)

// SynthesizeRequest is the body of POST /v1/synthesize
type SynthesizeRequest struct {
	Filename string `json:"filename"`
	Source   string `json:"source"`
}

// SynthesizeResponse carries the rendered header or the diagnostics that prevented it
type SynthesizeResponse struct {
	Header      string              `json:"header,omitempty"`
	Path        string              `json:"path,omitempty"`
	Entities    []policy.Entity     `json:"entities,omitempty"`
	Warnings    []string            `json:"warnings,omitempty"`
	Diagnostics []errors.Diagnostic `json:"diagnostics"`
}

// DecoratorInfo describes one registered decorator
type DecoratorInfo struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Expression string `json:"expression"`
	Summary    string `json:"summary"`
}

// Server serves the synthesis API
type Server struct {
	echo        *echo.Echo
	parser      parser.UnitParser
	generator   *generator.Generator
	diagnostics *utils.DiagnosticSystem
}

// New creates a server generating headers with g
func New(g *generator.Generator, diagnostics *utils.DiagnosticSystem) *Server {
	s := &Server{
		echo:        echo.New(),
		parser:      parser.New(),
		generator:   g,
		diagnostics: diagnostics,
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.BodyLimit(MaxSourceSize))
	s.echo.Use(s.logRequests)

	s.echo.GET("/healthz", s.health)
	v1 := s.echo.Group("/v1")
	v1.POST("/synthesize", s.synthesize)
	v1.GET("/decorators", s.listDecorators)

	return s
}

// Handler returns the HTTP handler serving every route
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	errCh := make(chan error, 1)
	go func() {
		s.diagnostics.Info("Listening on http://%s", addr)
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(errors.ConfigurationErrorCode, "failed to start server", err).
			WithContext("addr", addr).
			WithSuggestion("Pick a free address with --addr")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(errors.GenerationErrorCode, "failed to stop server", err)
	}
	s.diagnostics.Info("Server stopped")
	return nil
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) synthesize(c echo.Context) error {
	var req SynthesizeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure(
			errors.Wrap(errors.SyntaxErrorCode, "malformed request body", err).
				WithSuggestion(`Send {"filename": "...", "source": "..."} as JSON`)))
	}
	if strings.TrimSpace(req.Source) == "" {
		return c.JSON(http.StatusBadRequest, failure(
			errors.New(errors.SyntaxErrorCode, "source is empty").
				WithContext("filename", req.Filename)))
	}

	filename := req.Filename
	if filename == "" {
		filename = DefaultFilename
	}
	filename = filepath.Clean(filename)

	unit, err := s.parser.Parse(filename, []byte(req.Source))
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, failure(err))
	}

	header, err := s.generator.Generate(unit)
	if err != nil {
		s.diagnostics.Debug("synthesis of %s failed: %v", filename, err)
		return c.JSON(http.StatusUnprocessableEntity, failure(err))
	}

	resp := SynthesizeResponse{
		Header:      header.Content,
		Path:        header.FilePath,
		Warnings:    header.Warnings,
		Diagnostics: []errors.Diagnostic{},
	}
	for _, syn := range header.Syntheses {
		for _, e := range syn.Entities {
			resp.Entities = append(resp.Entities, policy.NewEntity(syn, e))
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) listDecorators(c echo.Context) error {
	list := s.generator.Decorators().List()
	out := make([]DecoratorInfo, 0, len(list))
	for _, d := range list {
		out = append(out, DecoratorInfo{
			Name:       d.Name(),
			Kind:       string(d.Kind()),
			Expression: d.Expression(),
			Summary:    d.Kind().Summary(),
		})
	}
	return c.JSON(http.StatusOK, out)
}

// logRequests reports every request at debug level
func (s *Server) logRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		s.diagnostics.Debug("%s %s %d %s", c.Request().Method, c.Request().URL.Path, c.Response().Status, time.Since(start))
		return err
	}
}

func failure(err error) SynthesizeResponse {
	return SynthesizeResponse{Diagnostics: errors.Diagnostics(err)}
}
