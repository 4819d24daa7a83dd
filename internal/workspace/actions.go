package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Action is one state transition. apply receives a private copy of the
// state and may modify it freely.
type Action interface {
	Type() string
	apply(s *State)
}

// Reduce returns the state after a, leaving s untouched.
func Reduce(s State, a Action) State {
	next := s.clone()
	a.apply(&next)
	return next
}

type OpenAuth struct{}

func (OpenAuth) Type() string { return "openAuth" }
func (OpenAuth) apply(s *State) { s.UI.AuthOpen = true }

type CloseAuth struct{}

func (CloseAuth) Type() string { return "closeAuth" }
func (CloseAuth) apply(s *State) { s.UI.AuthOpen = false }

type OpenSignUp struct{}

func (OpenSignUp) Type() string { return "openSignUp" }
func (OpenSignUp) apply(s *State) { s.UI.SignUpOpen = true }

type CloseSignUp struct{}

func (CloseSignUp) Type() string { return "closeSignUp" }
func (CloseSignUp) apply(s *State) { s.UI.SignUpOpen = false }

// DefaultSignInName is used when SignIn carries no name.
const DefaultSignInName = "Alex Contractor"

// SignIn marks the user signed in and closes both auth modals. Empty
// fields fall back to DefaultSignInName and the contractor role. A nil
// SignalsActive keeps the previous signed-in value; a guest starts active.
type SignIn struct {
	Name          string `json:"name"`
	Role          Role   `json:"role"`
	SignalsActive *bool  `json:"signals_active"`
}

func (SignIn) Type() string { return "signIn" }

func (a SignIn) apply(s *State) {
	u := User{SignedIn: true, Name: a.Name, Role: a.Role, SignalsActive: true}
	if u.Name == "" {
		u.Name = DefaultSignInName
	}
	if u.Role == RoleNone {
		u.Role = RoleContractor
	}
	switch {
	case a.SignalsActive != nil:
		u.SignalsActive = *a.SignalsActive
	case s.User.SignedIn:
		u.SignalsActive = s.User.SignalsActive
	}
	s.User = u
	s.UI.AuthOpen = false
	s.UI.SignUpOpen = false
}

// SignOut resets the user to Guest. Messages and leads are kept.
type SignOut struct{}

func (SignOut) Type() string { return "signOut" }
func (SignOut) apply(s *State) { s.User = Guest() }

// MarkMessagesRead marks the first Count unread messages as read.
type MarkMessagesRead struct {
	Count int `json:"count"`
}

func (MarkMessagesRead) Type() string { return "markMessagesRead" }

func (a MarkMessagesRead) apply(s *State) {
	left := a.Count
	for i := range s.Messages {
		if left <= 0 {
			return
		}
		if !s.Messages[i].Read {
			s.Messages[i].Read = true
			left--
		}
	}
}

type MarkSignalsSeen struct {
	At time.Time `json:"at"`
}

func (MarkSignalsSeen) Type() string { return "markSignalsSeen" }

func (a MarkSignalsSeen) apply(s *State) {
	s.LastSignalsSeenAt = a.At.UTC().Format(time.RFC3339)
}

// MoveLead puts a lead in a new stage. Unknown IDs are ignored.
type MoveLead struct {
	ID    string `json:"id"`
	Stage Stage  `json:"stage"`
}

func (MoveLead) Type() string { return "moveLead" }

func (a MoveLead) apply(s *State) {
	for i := range s.Leads {
		if s.Leads[i].ID == a.ID {
			s.Leads[i].Stage = a.Stage
			return
		}
	}
}

var ErrUnknownAction = errors.New("unknown action type")

// DecodeAction parses a {"type": ..., ...} payload. now fills in
// MarkSignalsSeen when the payload has no timestamp.
func DecodeAction(raw []byte, now time.Time) (Action, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}

	switch env.Type {
	case "openAuth":
		return OpenAuth{}, nil
	case "closeAuth":
		return CloseAuth{}, nil
	case "openSignUp":
		return OpenSignUp{}, nil
	case "closeSignUp":
		return CloseSignUp{}, nil
	case "signOut":
		return SignOut{}, nil
	case "signIn":
		var p struct {
			Name          string `json:"name"`
			Role          string `json:"role"`
			SignalsActive *bool  `json:"signals_active"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode signIn: %w", err)
		}
		a := SignIn{Name: p.Name, SignalsActive: p.SignalsActive}
		if p.Role != "" {
			r, err := ParseRole(p.Role)
			if err != nil {
				return nil, err
			}
			a.Role = r
		}
		return a, nil
	case "markMessagesRead":
		var a MarkMessagesRead
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("decode markMessagesRead: %w", err)
		}
		return a, nil
	case "markSignalsSeen":
		var a MarkSignalsSeen
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("decode markSignalsSeen: %w", err)
		}
		if a.At.IsZero() {
			a.At = now
		}
		return a, nil
	case "moveLead":
		var p struct {
			ID    string `json:"id"`
			Stage string `json:"stage"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode moveLead: %w", err)
		}
		st, err := ParseStage(p.Stage)
		if err != nil {
			return nil, err
		}
		return MoveLead{ID: p.ID, Stage: st}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, env.Type)
}
