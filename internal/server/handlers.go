package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/schematic/pkg/buildinfo"
	errs "github.com/matzehuels/schematic/pkg/errors"
	"github.com/matzehuels/schematic/pkg/pipeline"
	"github.com/matzehuels/schematic/pkg/render/svg"
	"github.com/matzehuels/schematic/pkg/schematic"
	"github.com/matzehuels/schematic/pkg/schematic/interact"
	"github.com/matzehuels/schematic/pkg/schematic/scene"
	"github.com/matzehuels/schematic/pkg/session"
)

// maxEventBody bounds the size of an events request.
const maxEventBody = 1 << 20

// =============================================================================
// Static Artifacts
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  buildinfo.Version,
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) handleArtifact(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := s.requestOptions(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.Formats = []string{format}

		d, err := s.diagram(r.Context(), opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		artifacts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), d, opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("X-Cache", cacheStatus(hit))
		_, _ = w.Write(artifacts[format])
	}
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

// requestOptions applies query overrides to the server's base options.
//
//	width, height, zoom, panX, panY  float
//	overlay, dots, detailed, labels, refresh  bool
func (s *Server) requestOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.opts
	q := r.URL.Query()

	floats := []struct {
		name string
		dst  *float64
	}{
		{"width", &opts.Width},
		{"height", &opts.Height},
		{"zoom", &opts.Zoom},
		{"panX", &opts.PanX},
		{"panY", &opts.PanY},
	}
	for _, f := range floats {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || n < 0 && (f.name == "width" || f.name == "height" || f.name == "zoom") {
			return opts, errs.New(errs.ErrCodeInvalidOptions, "invalid %s: %q", f.name, v)
		}
		*f.dst = n
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"overlay", &opts.Overlay},
		{"dots", &opts.Dots},
		{"detailed", &opts.Detailed},
		{"labels", &opts.EdgeLabels},
		{"refresh", &opts.Refresh},
	}
	for _, b := range bools {
		v := q.Get(b.name)
		if v == "" {
			continue
		}
		on, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errs.New(errs.ErrCodeInvalidOptions, "invalid %s: %q", b.name, v)
		}
		*b.dst = on
	}
	return opts, nil
}

// diagram fetches the collections and lays them out.
func (s *Server) diagram(ctx context.Context, opts pipeline.Options) (*schematic.Diagram, error) {
	cs, err := s.runner.Fetch(ctx, s.src, opts)
	if err != nil {
		return nil, err
	}
	return s.runner.Build(ctx, cs, opts)
}

// =============================================================================
// Viewer Sessions
// =============================================================================

// SessionResponse describes a session and its current view.
type SessionResponse struct {
	ID    string          `json:"id"`
	State schematic.State `json:"state"`
	Scene string          `json:"scene"`
}

// EventsResponse is the reply to a batch of events.
type EventsResponse struct {
	State    schematic.State `json:"state"`
	Navigate *Navigation     `json:"navigate,omitempty"`
}

// Navigation is the target of a genuine click on a collection.
type Navigation struct {
	RouteKey string `json:"routeKey"`
	Path     string `json:"path"`
	URL      string `json:"url,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d, err := s.diagram(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess := session.New(d, s.sessions.TTL())
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInternal, err, "store session"))
		return
	}
	s.logger.Debug("session created", "id", sess.ID)

	w.Header().Set("Location", "/sessions/"+sess.ID)
	writeJSON(w, http.StatusCreated, s.sessionResponse(sess))
}

func (s *Server) sessionResponse(sess *session.Session) SessionResponse {
	resp := SessionResponse{ID: sess.ID, Scene: "/sessions/" + sess.ID + "/scene.svg"}
	sess.Do(func(d *schematic.Diagram) { resp.State = d.State() })
	return resp
}

// session loads the {id} session and maps store errors to coded ones.
func (s *Server) session(r *http.Request) (*session.Session, error) {
	id := chi.URLParam(r, "id")
	if !session.ValidID(id) {
		return nil, errs.New(errs.ErrCodeSessionNotFound, "session %q not found", id)
	}
	sess, err := s.sessions.Get(r.Context(), id)
	switch {
	case errors.Is(err, session.ErrNotFound):
		return nil, errs.Wrap(errs.ErrCodeSessionNotFound, err, "session %s", id)
	case errors.Is(err, session.ErrExpired):
		return nil, errs.Wrap(errs.ErrCodeSessionExpired, err, "session %s", id)
	case err != nil:
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "load session %s", id)
	}
	return sess, nil
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.sessionResponse(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	_ = s.sessions.Delete(r.Context(), sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	events, err := decodeEvents(io.LimitReader(r.Body, maxEventBody))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var resp EventsResponse
	sess.Do(func(d *schematic.Diagram) {
		for _, ev := range events {
			if nav, ok := s.apply(d, ev); ok {
				resp.Navigate = nav
			}
		}
		resp.State = d.State()
	})
	if resp.Navigate != nil {
		s.logger.Debug("navigate", "session", sess.ID, "collection", resp.Navigate.RouteKey)
	}
	writeJSON(w, http.StatusOK, resp)
}

// apply handles one event. Clicks on an overlay control run its command.
func (s *Server) apply(d *schematic.Diagram, ev interact.Event) (*Navigation, bool) {
	if ev.Kind == interact.KindClick {
		if kind, ok := scene.Build(d).ControlAt(ev.Point()); ok {
			d.Handle(interact.Event{Kind: kind, Time: ev.Time})
			return nil, false
		}
	}
	n, ok := d.Handle(ev)
	if !ok {
		return nil, false
	}
	nav := &Navigation{RouteKey: n.RouteKey, Path: n.Path()}
	if s.cfg.ConsoleURL != "" {
		nav.URL = s.cfg.ConsoleURL + "/collections/" + url.PathEscape(n.RouteKey)
	}
	return nav, true
}

// decodeEvents accepts a single event, an array of events, or an object
// with an "events" array.
func decodeEvents(r io.Reader) ([]interact.Event, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidEvent, err, "read events")
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidEvent, "request body is empty")
	}

	if data[0] == '[' {
		var evs []interact.Event
		if err := json.Unmarshal(data, &evs); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidEvent, err, "decode events")
		}
		return evs, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidEvent, err, "decode event")
	}
	if raw, ok := obj["events"]; ok {
		var evs []interact.Event
		if err := json.Unmarshal(raw, &evs); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidEvent, err, "decode events")
		}
		return evs, nil
	}
	var ev interact.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidEvent, err, "decode event")
	}
	return []interact.Event{ev}, nil
}

func (s *Server) handleSessionScene(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var out []byte
	sess.Do(func(d *schematic.Diagram) {
		out = svg.Render(scene.Build(d), svg.WithGrid())
	})
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(out)
}

// =============================================================================
// Navigation
// =============================================================================

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := errs.ValidateRouteKey(key); err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.cfg.ConsoleURL == "" {
		s.writeError(w, r, errs.New(errs.ErrCodeNotFound, "no console URL configured"))
		return
	}
	http.Redirect(w, r, s.cfg.ConsoleURL+"/collections/"+url.PathEscape(key), http.StatusFound)
}
