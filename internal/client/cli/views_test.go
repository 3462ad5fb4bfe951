package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/pharmsim/internal/client/apitest"
	"github.com/dmitrijs2005/pharmsim/internal/client/client"
	"github.com/dmitrijs2005/pharmsim/internal/client/session"
	"github.com/dmitrijs2005/pharmsim/internal/client/token"
	"github.com/dmitrijs2005/pharmsim/internal/common"
)

type fakeResources struct {
	recs  map[client.Kind][]client.Record
	err   error
	lists []client.Kind
}

func (f *fakeResources) List(_ context.Context, kind client.Kind) ([]client.Record, error) {
	f.lists = append(f.lists, kind)
	if f.err != nil {
		return nil, f.err
	}
	return f.recs[kind], nil
}

func (f *fakeResources) Get(_ context.Context, kind client.Kind, id string) (client.Record, error) {
	for _, r := range f.recs[kind] {
		if r.ID() == id {
			return r, nil
		}
	}
	return nil, common.ErrorNotFound
}

func signIn(a *App, roles ...string) {
	tok := mint(roles, false)
	c, _ := token.Decode(tok)
	a.store.Set(func(session.Session) session.Session { return session.FromClaims(tok, c) })
}

func TestTableData(t *testing.T) {
	recs := []client.Record{
		{"_id": "s1", "name": "Cough", "tags": []any{"otc", "adult"}},
		{"id": 7, "name": nil, "owner": map[string]any{"name": "Dr. Lee"}},
		{"_id": "s3", "owner": map[string]any{"_id": "u9"}, "count": 2.5},
	}
	got := tableData([]string{"name", "tags", "owner", "count"}, recs)
	want := pterm.TableData{
		{"ID", "name", "tags", "owner", "count"},
		{"s1", "Cough", "otc, adult", "", ""},
		{"7", "", "", "Dr. Lee", ""},
		{"s3", "", "", "u9", "2.5"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tableData mismatch (-want +got):\n%s", diff)
	}
}

func TestOpen_UnknownView(t *testing.T) {
	a, _ := newFakeApp(t)
	err := a.Open(context.Background(), "pharmacies")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown view")
	assert.Contains(t, err.Error(), "scenarios")
}

func TestOpen_RendersAuthorizedView(t *testing.T) {
	a, _ := newFakeApp(t)
	res := &fakeResources{recs: map[client.Kind][]client.Record{
		client.KindScenario: {{"_id": "s1", "name": "Cough"}},
	}}
	a.resources = res
	signIn(a, roleStudent)

	require.NoError(t, a.Open(context.Background(), "scenarios"))
	require.NoError(t, a.Open(context.Background(), "transcripts"))
	assert.Equal(t, []client.Kind{client.KindScenario, client.KindTranscript}, res.lists)
}

func TestOpen_Home(t *testing.T) {
	a, _ := newFakeApp(t)
	res := &fakeResources{}
	a.resources = res
	signIn(a, roleStaff)

	require.NoError(t, a.Open(context.Background(), "home"))
	assert.Empty(t, res.lists, "home does not fetch resources")
}

func TestOpen_RoleNotAllowed(t *testing.T) {
	a, _ := newFakeApp(t)
	res := &fakeResources{}
	a.resources = res
	signIn(a, roleStudent)

	err := a.Open(context.Background(), "users")
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Empty(t, res.lists)
	assert.True(t, a.isLoggedIn(), "denial keeps the session")
}

func TestOpen_UnauthenticatedNonInteractive(t *testing.T) {
	a, _ := newFakeApp(t)
	a.resources = &fakeResources{}

	err := a.Open(context.Background(), "scenarios")
	assert.ErrorIs(t, err, common.ErrNotLoggedIn)
	assert.Contains(t, err.Error(), "/scenarios")
}

func TestOpen_InteractiveLoginReturnsToView(t *testing.T) {
	a, f := newFakeApp(t)
	res := &fakeResources{}
	a.resources = res
	a.interactive = true
	f.loginToken = mint([]string{roleStaff}, false)
	stubInputs(t, "kim", []byte("pw"), false)

	require.NoError(t, a.Open(context.Background(), "models"))
	assert.Equal(t, "kim", f.loginUser)
	assert.Equal(t, []client.Kind{client.KindModel}, res.lists)
}

func TestOpen_InteractiveLoginFailure(t *testing.T) {
	a, f := newFakeApp(t)
	res := &fakeResources{}
	a.resources = res
	a.interactive = true
	f.loginErr = errors.New("bad credentials")
	stubInputs(t, "kim", []byte("pw"), false)

	assert.ErrorContains(t, a.Open(context.Background(), "models"), "bad credentials")
	assert.Empty(t, res.lists)
}

func TestOpen_ResourceErrorPropagates(t *testing.T) {
	a, _ := newFakeApp(t)
	a.resources = &fakeResources{err: client.ErrUnavailable}
	signIn(a, roleAdmin)

	assert.ErrorIs(t, a.Open(context.Background(), "users"), client.ErrUnavailable)
}

func TestOpen_EmptyList(t *testing.T) {
	a, _ := newFakeApp(t)
	a.resources = &fakeResources{}
	signIn(a, roleAdmin)

	assert.NoError(t, a.Open(context.Background(), "issues"))
}

func TestOpen_ExpiredTokenWithoutRenewalIsUnauthenticated(t *testing.T) {
	a, _ := newFakeApp(t)
	a.resources = &fakeResources{}
	tok := apitest.Mint(apitest.User{Email: "kim@example.com", Roles: []string{roleAdmin}}, time.Now().Add(-time.Minute))
	c, _ := token.Decode(tok)
	a.store.Set(func(session.Session) session.Session { return session.FromClaims(tok, c) })

	assert.ErrorIs(t, a.Open(context.Background(), "users"), common.ErrNotLoggedIn)
	assert.False(t, a.isLoggedIn())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "a@b.c", displayName(session.Session{Email: "a@b.c", StudentNo: "S1"}))
	assert.Equal(t, "S1", displayName(session.Session{StudentNo: "S1"}))
	assert.Equal(t, "unknown user", displayName(session.Session{}))
}
