package session

import "github.com/roots/admin-console/internal/core/domain"

// Access is the route guard's verdict for a snapshot.
type Access int

const (
	// AccessUnknown means the session is still bootstrapping.
	AccessUnknown Access = iota
	// AccessGranted renders the protected area.
	AccessGranted
	// AccessDenied redirects to the login screen.
	AccessDenied
)

func (a Access) String() string {
	switch a {
	case AccessGranted:
		return "granted"
	case AccessDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// Evaluate applies the guard to a snapshot. A present identity is judged on
// its role immediately; an absent one is only denied once loading is over.
func Evaluate(s Snapshot, allowed ...domain.Role) Access {
	if s.User == nil {
		if s.IsLoading {
			return AccessUnknown
		}
		return AccessDenied
	}
	for _, r := range allowed {
		if s.User.Role == r {
			return AccessGranted
		}
	}
	return AccessDenied
}
