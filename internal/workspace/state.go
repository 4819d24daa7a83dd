// Package workspace keeps each signed-in user's session display state:
// who they are, which auth modals are open, their messages, their lead
// inbox and when they last looked at the signals feed.
//
// A Store owns one State and changes it only through Dispatch, so readers
// always see a complete snapshot.
package workspace

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleNone       Role = ""
	RoleHomeowner  Role = "HOMEOWNER"
	RoleContractor Role = "CONTRACTOR"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleHomeowner, RoleContractor:
		return r, nil
	}
	return RoleNone, fmt.Errorf("unknown role %q", s)
}

type User struct {
	SignedIn      bool   `json:"signed_in"`
	Name          string `json:"name"`
	Role          Role   `json:"role"`
	SignalsActive bool   `json:"signals_active"`
}

// Guest is the signed-out user.
func Guest() User {
	return User{Name: "Guest"}
}

type UI struct {
	AuthOpen   bool `json:"auth_open"`
	SignUpOpen bool `json:"sign_up_open"`
}

type Message struct {
	ID   string `json:"id" yaml:"id"`
	From string `json:"from" yaml:"from"`
	Body string `json:"body" yaml:"body"`
	Read bool   `json:"read" yaml:"read"`
}

// Stage is a lead's column in the inbox. Leads may move between any two stages.
type Stage string

const (
	StageNew    Stage = "New"
	StageQuoted Stage = "Quoted"
	StageWon    Stage = "Won"
	StageLost   Stage = "Lost"
)

var Stages = []Stage{StageNew, StageQuoted, StageWon, StageLost}

func ParseStage(s string) (Stage, error) {
	for _, st := range Stages {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown lead stage %q", s)
}

type Lead struct {
	ID     string `json:"id" yaml:"id"`
	Title  string `json:"title" yaml:"title"`
	Zip    string `json:"zip" yaml:"zip"`
	Budget *int   `json:"budget,omitempty" yaml:"budget"`
	Stage  Stage  `json:"stage" yaml:"stage"`
}

type State struct {
	User     User      `json:"user"`
	UI       UI        `json:"ui"`
	Messages []Message `json:"messages"`
	Leads    []Lead    `json:"leads"`
	// LastSignalsSeenAt is RFC 3339, empty until the feed is first opened.
	LastSignalsSeenAt string `json:"last_signals_seen_at,omitempty"`
}

// NewState returns a signed-out state holding copies of messages and leads.
func NewState(messages []Message, leads []Lead) State {
	return State{
		User:     Guest(),
		Messages: append([]Message{}, messages...),
		Leads:    cloneLeads(leads),
	}
}

func (s State) clone() State {
	c := s
	c.Messages = append([]Message{}, s.Messages...)
	c.Leads = cloneLeads(s.Leads)
	return c
}

func cloneLeads(leads []Lead) []Lead {
	out := make([]Lead, len(leads))
	for i, l := range leads {
		if l.Budget != nil {
			b := *l.Budget
			l.Budget = &b
		}
		out[i] = l
	}
	return out
}

// UnreadCount is the number of messages not yet read.
func UnreadCount(s State) int {
	n := 0
	for _, m := range s.Messages {
		if !m.Read {
			n++
		}
	}
	return n
}
