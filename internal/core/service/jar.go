package service

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"sync"
	"time"
)

// recordingJar is a cookie jar that also keeps the full Set-Cookie
// attributes it was given. The stdlib jar only hands back name and value,
// which is not enough to restore Path, Expires or Secure after a restart.
type recordingJar struct {
	http.CookieJar

	mu      sync.Mutex
	cookies map[string]*http.Cookie
	now     func() time.Time
}

func newRecordingJar(now func() time.Time) *recordingJar {
	// cookiejar.New only fails on a broken PublicSuffixList.
	inner, _ := cookiejar.New(nil)
	return &recordingJar{CookieJar: inner, cookies: make(map[string]*http.Cookie), now: now}
}

func (j *recordingJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.CookieJar.SetCookies(u, cookies)

	now := j.now()
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, c := range cookies {
		cp := *c
		if cp.Path == "" {
			cp.Path = defaultCookiePath(u.Path)
		}
		// MaxAge is relative to receipt; pin it to an absolute expiry.
		if cp.MaxAge > 0 {
			cp.Expires = now.Add(time.Duration(cp.MaxAge) * time.Second)
			cp.MaxAge = 0
		}
		// A cookie without Domain stays host-only; it is keyed by the host
		// that set it and restored against the same origin.
		scope := cp.Domain
		if scope == "" {
			scope = u.Hostname()
		}
		id := scope + ";" + cp.Path + ";" + cp.Name
		if cp.MaxAge < 0 || (!cp.Expires.IsZero() && !cp.Expires.After(now)) {
			delete(j.cookies, id)
			continue
		}
		cp.Raw, cp.Unparsed = "", nil
		j.cookies[id] = &cp
	}
}

// Recorded returns the live cookies with their attributes, ordered by
// domain, path and name.
func (j *recordingJar) Recorded() []*http.Cookie {
	now := j.now()
	j.mu.Lock()
	defer j.mu.Unlock()

	ids := make([]string, 0, len(j.cookies))
	for id, c := range j.cookies {
		if !c.Expires.IsZero() && !c.Expires.After(now) {
			delete(j.cookies, id)
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*http.Cookie, len(ids))
	for i, id := range ids {
		cp := *j.cookies[id]
		out[i] = &cp
	}
	return out
}

// defaultCookiePath is the RFC 6265 default-path of a request path.
func defaultCookiePath(p string) string {
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := len(p) - 1
	for i > 0 && p[i] != '/' {
		i--
	}
	if i == 0 {
		return "/"
	}
	return p[:i]
}
