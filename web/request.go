package web

import (
	"net/http"

	"github.com/google/uuid"
)

// Request wraps the transport-level request with an identifier and lazy
// session access. It is read-mostly: one Request is built per pipeline
// run and shared by every stage.
type Request struct {
	*http.Request

	id      string
	store   SessionStore
	opts    SessionOptions
	session Session
}

// NewRequest builds a pipeline Request from the raw transport request and
// the configured session store and options.
func NewRequest(r *http.Request, store SessionStore, opts SessionOptions) *Request {
	if opts.CookieName == "" {
		opts.CookieName = DefaultSessionOptions().CookieName
	}
	return &Request{
		Request: r,
		id:      uuid.NewString(),
		store:   store,
		opts:    opts,
	}
}

// ID returns the unique identifier assigned to this request.
func (r *Request) ID() string {
	return r.id
}

// Session returns the request's session, opening it from the session
// cookie on first access. Returns nil when no store is configured.
func (r *Request) Session() Session {
	if r.session != nil {
		return r.session
	}
	if r.store == nil {
		return nil
	}
	var id string
	if cookie, err := r.Cookie(r.opts.CookieName); err == nil {
		id = cookie.Value
	}
	r.session = r.store.Open(id)
	return r.session
}

// HasSession reports whether the session has been opened on this request.
func (r *Request) HasSession() bool {
	return r.session != nil
}

// SessionCookie returns the cookie that binds the request's session,
// suitable for setting on the response.
func (r *Request) SessionCookie() *http.Cookie {
	sess := r.Session()
	if sess == nil {
		return nil
	}
	cookie := &http.Cookie{
		Name:     r.opts.CookieName,
		Value:    sess.ID(),
		Path:     "/",
		HttpOnly: true,
	}
	if r.opts.TTL > 0 {
		cookie.MaxAge = int(r.opts.TTL.Seconds())
	}
	return cookie
}
