// ABOUTME: Route guard deciding whether a navigation may proceed
// ABOUTME: Pure function of the session's authenticated flag and the route policy

package router

// Policy is a route's access requirement
type Policy int

const (
	// Public routes are reachable by anyone
	Public Policy = iota
	// RequiresAuth routes need an authenticated session
	RequiresAuth
	// GuestOnly routes are for anonymous sessions only
	GuestOnly
)

// String returns the string representation of a Policy
func (p Policy) String() string {
	switch p {
	case RequiresAuth:
		return "requires-auth"
	case GuestOnly:
		return "guest-only"
	default:
		return "public"
	}
}

// Redirect targets
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Decision is the guard's outcome: proceed, or redirect to Target
type Decision struct {
	Proceed bool
	Target  string
}

// String renders the decision for logs and CLI output
func (d Decision) String() string {
	if d.Proceed {
		return "proceed"
	}
	return "redirect " + d.Target
}

// Guard evaluates one navigation. Restored sessions count as authenticated.
//
//	anonymous     + requires-auth -> redirect /login
//	authenticated + guest-only    -> redirect /
//	anything else                 -> proceed
func Guard(authenticated bool, policy Policy) Decision {
	switch {
	case policy == RequiresAuth && !authenticated:
		return Decision{Target: LoginPath}
	case policy == GuestOnly && authenticated:
		return Decision{Target: HomePath}
	default:
		return Decision{Proceed: true}
	}
}
