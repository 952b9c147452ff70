package session

import (
	"context"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/ifcet/aula/core"
)

// Resolver reads and writes the active course state of one browser session.
// Storage is best effort: failures are logged and treated as absent values.
type Resolver struct {
	store  Store
	logger core.Logger
}

func NewResolver(store Store, logger core.Logger) *Resolver {
	if store == nil {
		panic("session: nil store")
	}
	if logger == nil {
		panic("session: nil logger")
	}
	return &Resolver{store: store, logger: logger}
}

func (r *Resolver) get(ctx context.Context, key string) string {
	val, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			r.logger.Warn("reading session value "+key, err)
		}
		return ""
	}
	return val
}

func (r *Resolver) set(ctx context.Context, key, val string) {
	if err := r.store.Set(ctx, key, val); err != nil {
		r.logger.Warn("writing session value "+key, err)
	}
}

func (r *Resolver) remove(ctx context.Context, key string) {
	if err := r.store.Remove(ctx, key); err != nil && errors.Cause(err) != ErrNotFound {
		r.logger.Warn("removing session value "+key, err)
	}
}

// RestoreSession returns the persisted session, or nil when it is absent or unreadable.
func (r *Resolver) RestoreSession(ctx context.Context) *Session {
	raw := strings.TrimSpace(r.get(ctx, UserKey))
	if raw == "" || raw == "null" {
		return nil
	}
	s, err := decodeSession(raw)
	if err != nil {
		r.logger.Warn("discarding unreadable session", err)
		return nil
	}
	return s
}

// PersistedCourse returns the raw persisted active course value ("" when absent).
func (r *Resolver) PersistedCourse(ctx context.Context) string {
	return r.get(ctx, ActiveCourseKey)
}

// OnActiveCourseChange persists an accessible course and mirrors it in the query.
// Inaccessible or absent courses leave both untouched.
func (r *Resolver) OnActiveCourseChange(ctx context.Context, s *Session, id null.Int, query url.Values) {
	if !CanAccessCourse(s, id) {
		return
	}
	val := strconv.Itoa(id.Int)
	if query != nil {
		query.Set(CourseParam, val)
	}
	r.set(ctx, ActiveCourseKey, val)
}

// OnSessionChange persists the session record, or clears it when s is nil.
func (r *Resolver) OnSessionChange(ctx context.Context, s *Session) {
	if s == nil {
		r.remove(ctx, UserKey)
		return
	}
	raw, err := s.encode()
	if err != nil {
		r.logger.Warn("persisting session", err)
		return
	}
	r.set(ctx, UserKey, raw)
}

// Clear removes every persisted value and the course parameters from the query.
func (r *Resolver) Clear(ctx context.Context, query url.Values) {
	r.remove(ctx, UserKey)
	r.remove(ctx, ActiveCourseKey)
	if query != nil {
		query.Del(CourseParam)
		query.Del(CourseParamAlias)
	}
}

// CanAccessCourse reports whether the session is present and `id` is one of its courses.
func CanAccessCourse(s *Session, id null.Int) bool {
	return s != nil && id.Valid && s.HasCourse(id.Int)
}

// CourseParamValue returns the course requested by the query, preferring the
// canonical parameter over its alias.
func CourseParamValue(query url.Values) string {
	if v := strings.TrimSpace(query.Get(CourseParam)); v != "" {
		return v
	}
	return strings.TrimSpace(query.Get(CourseParamAlias))
}

// parseCourseID parses a course reference. numeric is true for any number,
// id is only valid for whole numbers.
func parseCourseID(raw string) (id null.Int, numeric bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return null.Int{}, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return null.Int{}, false
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return null.Int{}, true
	}
	return null.IntFrom(int(f)), true
}

// ResolveInitialCourse picks the course to show when a session is restored:
// the URL course when accessible, else the persisted one when accessible, else
// the session's first course. A numeric URL course the session cannot access
// yields ErrAccessDenied, whichever course ends up selected.
func ResolveInitialCourse(s *Session, urlParam, persisted string) (null.Int, error) {
	wanted, wantedNumeric := parseCourseID(urlParam)
	stored, _ := parseCourseID(persisted)

	var active null.Int
	switch {
	case CanAccessCourse(s, wanted):
		active = wanted
	case CanAccessCourse(s, stored):
		active = stored
	default:
		if first, ok := s.FirstCourse(); ok {
			active = null.IntFrom(first)
		}
	}

	if wantedNumeric && !CanAccessCourse(s, wanted) {
		return active, ErrAccessDenied
	}
	return active, nil
}

// SelectCourse switches to `requested` when the session may access it.
// Otherwise the current course stays active and ErrAccessDenied is returned.
func SelectCourse(s *Session, current null.Int, requested int) (null.Int, error) {
	req := null.IntFrom(requested)
	if !CanAccessCourse(s, req) {
		return current, ErrAccessDenied
	}
	return req, nil
}
