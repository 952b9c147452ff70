package session

import (
	"context"
	"net/url"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/ifcet/aula/core"
)

type (
	// Authenticator validates login credentials against the student store.
	// It returns ErrBadCredentials for unknown users or wrong passwords.
	Authenticator interface {
		Authenticate(ctx context.Context, username, password string) (*Session, error)
	}

	// State is what the portal shows after an operation.
	State struct {
		Session        *Session `json:"user"`
		ActiveCourseID null.Int `json:"activeCourseId"`
		Error          string   `json:"error,omitempty"`
		Query          string   `json:"query"`
	}

	// Portal drives the LoggedOut -> LoggedIn lifecycle of the Aula Virtual.
	Portal struct {
		auth   Authenticator
		logger core.Logger
	}
)

func (st State) LoggedIn() bool { return st.Session != nil }

func NewPortal(auth Authenticator, logger core.Logger) *Portal {
	return &Portal{auth: auth, logger: logger}
}

func newState(s *Session, active null.Int, err error, query url.Values) State {
	st := State{Session: s, ActiveCourseID: active, Query: query.Encode()}
	if err != nil {
		st.Error = core.T(err.Error())
	}
	return st
}

// Login validates the credentials and starts a session on the first permitted course.
func (p *Portal) Login(ctx context.Context, store Store, username, password string, query url.Values) (State, error) {
	s, err := p.auth.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Cause(err) == ErrBadCredentials {
			return newState(nil, null.Int{}, ErrBadCredentials, query), ErrBadCredentials
		}
		return State{}, errors.Wrap(err, "authenticating")
	}

	r := NewResolver(store, p.logger)
	var active null.Int
	if first, ok := s.FirstCourse(); ok {
		active = null.IntFrom(first)
	}
	r.OnSessionChange(ctx, s)
	r.OnActiveCourseChange(ctx, s, active, query)
	return newState(s, active, nil, query), nil
}

// Restore rebuilds the state from the persisted session and the requested query.
// The access denied signal is reported in State.Error, not as an error.
func (p *Portal) Restore(ctx context.Context, store Store, query url.Values) (State, error) {
	r := NewResolver(store, p.logger)
	s := r.RestoreSession(ctx)
	if s == nil {
		return newState(nil, null.Int{}, nil, query), ErrLoggedOut
	}

	active, err := ResolveInitialCourse(s, CourseParamValue(query), r.PersistedCourse(ctx))
	r.OnActiveCourseChange(ctx, s, active, query)
	return newState(s, active, err, query), nil
}

// Select switches the active course. A course the session cannot access keeps
// the current one and reports ErrAccessDenied in State.Error.
func (p *Portal) Select(ctx context.Context, store Store, courseID int, query url.Values) (State, error) {
	r := NewResolver(store, p.logger)
	s := r.RestoreSession(ctx)
	if s == nil {
		return newState(nil, null.Int{}, nil, query), ErrLoggedOut
	}

	current, _ := ResolveInitialCourse(s, "", r.PersistedCourse(ctx))
	active, err := SelectCourse(s, current, courseID)
	r.OnActiveCourseChange(ctx, s, active, query)
	return newState(s, active, err, query), nil
}

// Logout clears every persisted value and the course parameters.
func (p *Portal) Logout(ctx context.Context, store Store, query url.Values) State {
	r := NewResolver(store, p.logger)
	r.OnSessionChange(ctx, nil)
	r.Clear(ctx, query)
	return newState(nil, null.Int{}, nil, query)
}
