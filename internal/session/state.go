// ABOUTME: Session state as a closed set of variants
// ABOUTME: Anonymous, Restored (token only, identity pending) or Authenticated

package session

import "github.com/waynezhang680/examctl/internal/models"

// State is one of Anonymous, Restored or Authenticated.
// Identity without a token cannot be represented.
type State interface {
	isState()
}

// Anonymous holds no identity and no token
type Anonymous struct{}

// Restored holds a token loaded from durable storage whose identity
// has not been fetched yet
type Restored struct {
	Token string
}

// Authenticated holds a verified identity and its bearer token
type Authenticated struct {
	Identity models.Identity
	Token    string
}

func (Anonymous) isState()     {}
func (Restored) isState()      {}
func (Authenticated) isState() {}

// tokenOf returns the bearer token carried by st, if any
func tokenOf(st State) string {
	switch s := st.(type) {
	case Restored:
		return s.Token
	case Authenticated:
		return s.Token
	default:
		return ""
	}
}

// Describe returns a short name for the variant
func Describe(st State) string {
	switch st.(type) {
	case Restored:
		return "restored"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Reason says which operation produced a Change
type Reason int

const (
	ReasonLogin Reason = iota
	ReasonRegister
	ReasonUserSet
	ReasonTokenSet
	ReasonRehydrated
	ReasonLogout
	ReasonEvicted
)

// String returns the string representation of a Reason
func (r Reason) String() string {
	switch r {
	case ReasonLogin:
		return "login"
	case ReasonRegister:
		return "register"
	case ReasonUserSet:
		return "user_set"
	case ReasonTokenSet:
		return "token_set"
	case ReasonRehydrated:
		return "rehydrated"
	case ReasonLogout:
		return "logout"
	case ReasonEvicted:
		return "evicted"
	default:
		return "unknown"
	}
}

// Change is delivered to observers after every effective mutation
type Change struct {
	State  State
	Reason Reason
}

// Observer receives session changes. It runs outside the store's lock
// and may call back into the store.
type Observer func(Change)
