package workspace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func budget(n int) *int { return &n }

func seedState() State {
	return NewState(
		[]Message{
			{ID: "m1", From: "Lindsey", Body: "Can you swing by tomorrow?"},
			{ID: "m2", From: "Marco", Body: "Condenser by Friday."},
			{ID: "m3", From: "Priya", Body: "Adding photos.", Read: true},
			{ID: "m4", From: "Dana", Body: "Is Tuesday OK?"},
		},
		[]Lead{
			{ID: "l1", Title: "Panel upgrade", Zip: "11215", Budget: budget(4200), Stage: StageNew},
			{ID: "l2", Title: "Roof flashing", Zip: "11355", Stage: StageQuoted},
		},
	)
}

func TestNewState_IsGuest(t *testing.T) {
	s := seedState()
	assert.Equal(t, Guest(), s.User)
	assert.Equal(t, "Guest", s.User.Name)
	assert.Equal(t, 3, UnreadCount(s))
}

func TestModalActions(t *testing.T) {
	s := Reduce(seedState(), OpenAuth{})
	assert.True(t, s.UI.AuthOpen)
	s = Reduce(s, OpenSignUp{})
	assert.True(t, s.UI.SignUpOpen)
	s = Reduce(s, CloseAuth{})
	assert.False(t, s.UI.AuthOpen)
	assert.True(t, s.UI.SignUpOpen)
	s = Reduce(s, CloseSignUp{})
	assert.Equal(t, UI{}, s.UI)
}

func TestSignIn_Defaults(t *testing.T) {
	s := Reduce(Reduce(seedState(), OpenAuth{}), OpenSignUp{})
	s = Reduce(s, SignIn{})

	assert.Equal(t, User{SignedIn: true, Name: DefaultSignInName, Role: RoleContractor, SignalsActive: true}, s.User)
	assert.Equal(t, UI{}, s.UI, "sign in closes both modals")
}

func TestSignIn_KeepsPreviousSignalsActive(t *testing.T) {
	off := false
	s := Reduce(seedState(), SignIn{Name: "Jordan", Role: RoleHomeowner, SignalsActive: &off})
	assert.Equal(t, User{SignedIn: true, Name: "Jordan", Role: RoleHomeowner}, s.User)

	s = Reduce(s, SignIn{Name: "Jordan"})
	assert.False(t, s.User.SignalsActive, "unset flag keeps the signed-in value")
	assert.Equal(t, RoleContractor, s.User.Role)
}

func TestSignOut_ResetsToGuest(t *testing.T) {
	s := Reduce(Reduce(seedState(), SignIn{}), SignOut{})
	assert.Equal(t, Guest(), s.User)
	assert.Len(t, s.Messages, 4)
}

func TestMarkMessagesRead(t *testing.T) {
	s := Reduce(seedState(), MarkMessagesRead{Count: 2})
	assert.Equal(t, 1, UnreadCount(s))
	assert.True(t, s.Messages[0].Read)
	assert.True(t, s.Messages[1].Read)
	assert.False(t, s.Messages[3].Read)

	s = Reduce(s, MarkMessagesRead{Count: 10})
	assert.Zero(t, UnreadCount(s))
}

func TestMarkMessagesRead_NonPositiveIsNoop(t *testing.T) {
	for _, n := range []int{0, -3} {
		before := seedState()
		after := Reduce(before, MarkMessagesRead{Count: n})
		assert.Equal(t, before, after)
	}
}

func TestMarkSignalsSeen(t *testing.T) {
	at := time.Date(2025, 8, 18, 9, 30, 0, 0, time.FixedZone("EDT", -4*3600))
	s := Reduce(seedState(), MarkSignalsSeen{At: at})
	assert.Equal(t, "2025-08-18T13:30:00Z", s.LastSignalsSeenAt)
}

func TestMoveLead(t *testing.T) {
	s := Reduce(seedState(), MoveLead{ID: "l1", Stage: StageWon})
	assert.Equal(t, StageWon, s.Leads[0].Stage)

	same := Reduce(s, MoveLead{ID: "nope", Stage: StageLost})
	assert.Equal(t, s, same)
}

func TestReduce_IsPure(t *testing.T) {
	before := seedState()
	snapshot := before.clone()

	after := Reduce(before, MarkMessagesRead{Count: 3})
	after = Reduce(after, MoveLead{ID: "l1", Stage: StageLost})
	*after.Leads[0].Budget = 1

	assert.Equal(t, snapshot, before)
	assert.Equal(t, 4200, *before.Leads[0].Budget)
}

func TestDecodeAction(t *testing.T) {
	now := time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		raw  string
		want Action
	}{
		{`{"type":"openAuth"}`, OpenAuth{}},
		{`{"type":"closeSignUp"}`, CloseSignUp{}},
		{`{"type":"signOut"}`, SignOut{}},
		{`{"type":"signIn","name":"Sam","role":"homeowner"}`, SignIn{Name: "Sam", Role: RoleHomeowner}},
		{`{"type":"markMessagesRead","count":2}`, MarkMessagesRead{Count: 2}},
		{`{"type":"markSignalsSeen"}`, MarkSignalsSeen{At: now}},
		{`{"type":"moveLead","id":"l2","stage":"won"}`, MoveLead{ID: "l2", Stage: StageWon}},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := DecodeAction([]byte(tc.raw), now)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeAction_Errors(t *testing.T) {
	_, err := DecodeAction([]byte(`{"type":"deleteEverything"}`), time.Now())
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = DecodeAction([]byte(`{"type":"moveLead","id":"l1","stage":"Archived"}`), time.Now())
	assert.Error(t, err)

	_, err = DecodeAction([]byte(`{"type":"signIn","role":"ADMIN"}`), time.Now())
	assert.Error(t, err)

	_, err = DecodeAction([]byte(`not json`), time.Now())
	assert.Error(t, err)
}
