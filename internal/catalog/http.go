package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"GoldStore/pkg/kit"
)

type Server struct {
	Engine *Engine
	Log    *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := s.Engine.Ping(ctx); err != nil {
			if s.Log != nil {
				s.Log.Warn("readyz failed", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.list)
			r.Get("/stats", s.stats)
			r.Get("/{id}", s.get)
		})
		r.Route("/gold-price", func(r chi.Router) {
			r.Get("/", s.goldPrice)
			r.Get("/refresh", s.refreshGoldPrice)
		})
	})

	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilters(r.URL.Query())
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	items, err := s.Engine.Query(r.Context(), f)
	if err != nil {
		s.serverError(w, r, "list products failed", err)
		return
	}
	kit.WriteList(w, http.StatusOK, items, len(items))
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")

	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid product id", map[string]any{"id": raw})
		return
	}

	p, ok, err := s.Engine.ByIndex(r.Context(), idx)
	if err != nil {
		s.serverError(w, r, "get product failed", err)
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "product not found", map[string]any{"id": idx})
		return
	}
	kit.WriteData(w, http.StatusOK, p)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	st, err := s.Engine.Stats(r.Context())
	if err != nil {
		s.serverError(w, r, "product stats failed", err)
		return
	}
	kit.WriteData(w, http.StatusOK, st)
}

func (s *Server) goldPrice(w http.ResponseWriter, r *http.Request) {
	kit.WriteData(w, http.StatusOK, s.Engine.CurrentPrice(r.Context()))
}

func (s *Server) refreshGoldPrice(w http.ResponseWriter, r *http.Request) {
	kit.WriteData(w, http.StatusOK, s.Engine.RefreshPrice(r.Context()))
}

// serverError hides the actual failure behind a generic message. A 500
// here always means a catalog data problem; feed failures never reach
// this path.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if s.Log != nil {
		s.Log.Error(msg, zap.Error(err))
	}

	var loadErr *DataLoadError
	if errors.As(err, &loadErr) {
		kit.WriteError(w, r, http.StatusInternalServerError, "failed to load products data", nil)
		return
	}
	kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
}

func parseFilters(q url.Values) (Filters, error) {
	f := Filters{
		Search:    q.Get("search"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
	if f.SortBy == "" {
		f.SortBy = SortByPopularity
	}
	if f.SortOrder == "" {
		f.SortOrder = SortDesc
	}

	var err error
	if f.MinPrice, err = floatParam(q, "minPrice"); err != nil {
		return Filters{}, err
	}
	if f.MaxPrice, err = floatParam(q, "maxPrice"); err != nil {
		return Filters{}, err
	}
	if f.MinPopularity, err = floatParam(q, "minPopularity"); err != nil {
		return Filters{}, err
	}
	if f.MaxPopularity, err = floatParam(q, "maxPopularity"); err != nil {
		return Filters{}, err
	}
	return f, nil
}

func floatParam(q url.Values, name string) (*float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return &v, nil
}
