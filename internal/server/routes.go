package server

import (
	"net/http"

	"pedigree/internal/errors"
	"pedigree/internal/graph"
	"pedigree/internal/logger"
	"pedigree/internal/retrieval"

	"github.com/labstack/echo/v4"
)

func (s *Server) registerRoutes() {
	e := s.echo

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	e.GET("/people/index", s.getIndex)
	e.GET("/people/:id", s.getPerson)
	e.GET("/people/:id/family", s.getFamily)
	e.GET("/people/:id/graph", s.getGraph)
	e.GET("/relate", s.getRelate)
}

type personParams struct {
	ID string `param:"id" validate:"required,max=64"`
}

type relateParams struct {
	From    string `query:"from" validate:"required,max=64"`
	To      string `query:"to" validate:"required,max=64"`
	MaxHops int    `query:"max_hops" validate:"omitempty,min=1,max=64"`
}

type relateResponse struct {
	Path        []retrieval.Step `json:"path"`
	Description string           `json:"description"`
}

func (s *Server) getIndex(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Snapshot().Manifest)
}

func (s *Server) getPerson(c echo.Context) error {
	params, err := bindPerson(c)
	if err != nil {
		return s.fail(c, err)
	}

	p, err := s.Snapshot().Cache.LoadPerson(c.Request().Context(), params.ID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) getFamily(c echo.Context) error {
	params, err := bindPerson(c)
	if err != nil {
		return s.fail(c, err)
	}

	fam, err := s.Snapshot().Resolver.ResolveFamily(c.Request().Context(), params.ID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, fam)
}

func (s *Server) getGraph(c echo.Context) error {
	params, err := bindPerson(c)
	if err != nil {
		return s.fail(c, err)
	}

	fam, err := s.Snapshot().Resolver.ResolveFamily(c.Request().Context(), params.ID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, graph.FromFamily(fam))
}

func (s *Server) getRelate(c echo.Context) error {
	params := new(relateParams)
	if err := c.Bind(params); err != nil {
		return s.fail(c, errors.Wrap(errors.ErrInvalidRequest, "invalid query params"))
	}
	if err := c.Validate(params); err != nil {
		return s.fail(c, errors.Wrap(errors.ErrInvalidRequest, err.Error()))
	}

	cfg := retrieval.Config{MaxHops: s.maxHops, Concurrency: s.concurrency}
	if params.MaxHops > 0 {
		cfg.MaxHops = params.MaxHops
	}

	path, err := retrieval.Search(c.Request().Context(), s.Snapshot().Cache, params.From, params.To, cfg)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, relateResponse{
		Path:        path,
		Description: retrieval.Describe(path),
	})
}

func bindPerson(c echo.Context) (*personParams, error) {
	params := new(personParams)
	if err := c.Bind(params); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "invalid request params")
	}
	if err := c.Validate(params); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidRequest, err.Error())
	}
	return params, nil
}

// fail maps err onto a JSON error response.
func (s *Server) fail(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.IsNotFound(err), errors.Is(err, retrieval.ErrNoPath):
		status = http.StatusNotFound
	case errors.Is(err, errors.ErrInvalidRequest):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.logger.Warnw("request failed",
			"uri", c.Request().RequestURI,
			logger.FieldError, err,
		)
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}
