package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/archview/pkg/buildinfo"
	"github.com/matzehuels/archview/pkg/calm"
	"github.com/matzehuels/archview/pkg/decision"
	"github.com/matzehuels/archview/pkg/errors"
	"github.com/matzehuels/archview/pkg/graph"
	"github.com/matzehuels/archview/pkg/pattern"
	"github.com/matzehuels/archview/pkg/pipeline"
)

// visibilityResponse lists the ids left visible by a selection, sorted.
type visibilityResponse struct {
	Active bool     `json:"active"`
	Nodes  []string `json:"nodes"`
	Edges  []string `json:"edges"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

// handleGraph builds a graph straight from the request body.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g, cached, err := s.runner.GraphWithCacheInfo(r.Context(), data, s.options(patternParam(r)))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("X-Archview-Cache", cacheStatus(cached))
	writeJSON(w, http.StatusOK, g)
}

// handleCreateDocument stores a document after checking that it decodes.
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := calm.Parse(data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	stored := s.store.Create(data, patternParam(r) || pattern.IsPattern(doc))
	w.Header().Set("Location", "/v1/documents/"+stored.ID)
	writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.document(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.store.Delete(id) {
		s.writeError(w, r, errors.New(errors.ErrCodeDocumentNotFound, "document %s not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDocumentGraph(w http.ResponseWriter, r *http.Request) {
	g, cached, err := s.documentGraph(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("X-Archview-Cache", cacheStatus(cached))
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleDecisions(w http.ResponseWriter, r *http.Request) {
	g, _, err := s.documentGraph(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	points := decision.ExtractPoints(g.Nodes)
	if points == nil {
		points = []decision.Point{}
	}
	writeJSON(w, http.StatusOK, points)
}

// handleVisibility applies the selections in the body. An empty body or
// an empty object leaves everything visible.
func (s *Server) handleVisibility(w http.ResponseWriter, r *http.Request) {
	g, _, err := s.documentGraph(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var sel decision.Selections
	if len(data) > 0 {
		if err := json.Unmarshal(data, &sel); err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidSelection, err, "decode selections"))
			return
		}
	}

	view := pipeline.Filter(r.Context(), g, sel)
	resp := visibilityResponse{Active: view.Active, Nodes: []string{}, Edges: []string{}}
	if view.Active {
		resp.Nodes = view.Nodes.Sorted()
		resp.Edges = view.Edges.Sorted()
	} else {
		for _, n := range g.Nodes {
			resp.Nodes = append(resp.Nodes, n.ID)
		}
		for _, e := range g.Edges {
			resp.Edges = append(resp.Edges, e.ID)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRender renders the document graph. Query parameters: format
// (svg, dot, json), select (repeatable "group=i,j"), hide, detailed,
// positioned.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := errors.ValidateFormat(format, pipeline.FormatSVG, pipeline.FormatDOT, pipeline.FormatJSON); err != nil {
		s.writeError(w, r, err)
		return
	}
	sel, err := decision.ParseSelections(q["select"]...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	g, _, err := s.documentGraph(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, cached, err := s.runner.RenderWithCacheInfo(r.Context(), g, pipeline.RenderOptions{
		Format:       format,
		Selections:   sel,
		HideFiltered: boolParam(r, "hide"),
		Detailed:     boolParam(r, "detailed"),
		Positioned:   boolParam(r, "positioned"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	w.Header().Set("X-Archview-Cache", cacheStatus(cached))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) document(r *http.Request) (*Document, error) {
	id := chi.URLParam(r, "id")
	doc, ok := s.store.Get(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeDocumentNotFound, "document %s not found", id)
	}
	return doc, nil
}

func (s *Server) documentGraph(r *http.Request) (graph.Graph, bool, error) {
	doc, err := s.document(r)
	if err != nil {
		return graph.Empty(), false, err
	}
	return s.runner.GraphWithCacheInfo(r.Context(), doc.Data, s.options(doc.Pattern || patternParam(r)))
}

func (s *Server) options(isPattern bool) pipeline.Options {
	return pipeline.Options{Pattern: isPattern, Layout: s.layout}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	return data, nil
}

func patternParam(r *http.Request) bool {
	return boolParam(r, "pattern")
}

func boolParam(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}

func cacheStatus(cached bool) string {
	if cached {
		return "hit"
	}
	return "miss"
}

func contentType(format string) string {
	switch format {
	case pipeline.FormatSVG:
		return "image/svg+xml"
	case pipeline.FormatJSON:
		return "application/json"
	default:
		return "text/vnd.graphviz"
	}
}
