package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/visitorhub/internal/client/client"
	"github.com/dmitrijs2005/visitorhub/internal/client/config"
	"github.com/dmitrijs2005/visitorhub/internal/client/session"
	"github.com/dmitrijs2005/visitorhub/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	token  string
	closed bool

	registerReq client.RegisterRequest
	loginUser   string
	loginPass   string
	loginErr    error
	changes     client.ProfileChanges
	listArgs    []any
	pingErr     error
	avatarFile  string
}

func (f *fakeClient) Close() error { f.closed = true; return nil }

func (f *fakeClient) session(username string) *models.SessionView {
	f.token = "tok-" + username
	return &models.SessionView{
		User:  models.AccountView{ID: "id-1", Username: username, Status: "active", LoginCount: 1},
		Token: models.TokenView{AccessToken: f.token, TokenType: "bearer"},
	}
}

func (f *fakeClient) Register(_ context.Context, req client.RegisterRequest) (*models.SessionView, error) {
	f.registerReq = req
	return f.session(req.Username), nil
}

func (f *fakeClient) Login(_ context.Context, username string, password []byte) (*models.SessionView, error) {
	f.loginUser, f.loginPass = username, string(password)
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.session(username), nil
}

func (f *fakeClient) Me(context.Context) (*models.AccountView, error) {
	name := "Alice"
	return &models.AccountView{ID: "id-1", Username: "alice", Email: "alice@example.com",
		Profile: models.ProfileView{Name: &name}, Status: "active"}, nil
}

func (f *fakeClient) UpdateMe(_ context.Context, changes client.ProfileChanges) (*models.AccountView, error) {
	f.changes = changes
	return &models.AccountView{ID: "id-1", Username: "alice", Profile: models.ProfileView{Phone: changes.Phone}}, nil
}

func (f *fakeClient) ListVisitors(_ context.Context, skip, limit int, status string) (*models.VisitorListView, error) {
	f.listArgs = []any{skip, limit, status}
	return &models.VisitorListView{
		Visitors: []models.AccountView{{ID: "id-1", Username: "alice", Email: "alice@example.com", Status: "active"}},
		Total:    1, Skip: skip, Limit: 20,
	}, nil
}

func (f *fakeClient) AvatarUpload(_ context.Context, filename string) (*models.AvatarUpload, error) {
	f.avatarFile = filename
	return &models.AvatarUpload{
		Key:       "avatars/id-1/x.png",
		UploadURL: "https://s3.local/b/avatars/id-1/x.png?X-Amz-Signature=1",
		AvatarURL: "https://s3.local/b/avatars/id-1/x.png",
	}, nil
}

func (f *fakeClient) Ping(context.Context) error { return f.pingErr }
func (f *fakeClient) SetToken(token string)      { f.token = token }
func (f *fakeClient) Token() string              { return f.token }

type fakeSessions struct {
	saved  session.Session
	closed bool
}

func (f *fakeSessions) Load(context.Context) (session.Session, error) { return f.saved, nil }

func (f *fakeSessions) Save(_ context.Context, username, token string) error {
	f.saved = session.Session{Username: username, Token: token}
	return nil
}

func (f *fakeSessions) Clear(context.Context) error { f.saved = session.Session{}; return nil }
func (f *fakeSessions) Close() error                { f.closed = true; return nil }

func newTestApp(api *fakeClient, input string, cfg *config.Config) (*App, *bytes.Buffer) {
	return newTestAppWithSessions(api, nil, input, cfg)
}

func newTestAppWithSessions(api *fakeClient, sessions *fakeSessions, input string, cfg *config.Config) (*App, *bytes.Buffer) {
	if cfg == nil {
		cfg = &config.Config{}
		cfg.LoadDefaults()
	}
	var out bytes.Buffer
	var store SessionStore
	if sessions != nil {
		store = sessions
	}
	return newApp(cfg, api, store, strings.NewReader(input), &out), &out
}

func TestRegister_PromptsAndSkipsOptionalFields(t *testing.T) {
	stubPassword(t, "hunter22", nil)
	api := &fakeClient{}
	app, out := newTestApp(api, "alice\nalice@example.com\n\n13812345678\n", nil)

	require.NoError(t, app.Exec(context.Background(), "register", nil))

	assert.Equal(t, "alice", api.registerReq.Username)
	assert.Equal(t, "alice@example.com", api.registerReq.Email)
	assert.Equal(t, "hunter22", api.registerReq.Password)
	assert.Nil(t, api.registerReq.Name)
	require.NotNil(t, api.registerReq.Phone)
	assert.Equal(t, "13812345678", *api.registerReq.Phone)
	assert.Contains(t, out.String(), "Registered alice")
	assert.Contains(t, out.String(), "tok-alice")
	assert.True(t, app.isLoggedIn())
}

func TestLogin(t *testing.T) {
	stubPassword(t, "hunter22", nil)
	api := &fakeClient{}
	app, out := newTestApp(api, "alice@example.com\n", nil)

	require.NoError(t, app.Exec(context.Background(), "login", nil))

	assert.Equal(t, "alice@example.com", api.loginUser)
	assert.Equal(t, "hunter22", api.loginPass)
	assert.Contains(t, out.String(), "Login successful")
	assert.Equal(t, "(alice@example.com)", app.getStatus())
}

func TestLogin_Error(t *testing.T) {
	stubPassword(t, "nope", nil)
	api := &fakeClient{loginErr: client.ErrUnauthorized}
	app, _ := newTestApp(api, "alice\n", nil)

	err := app.Exec(context.Background(), "login", nil)

	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.False(t, app.isLoggedIn())
}

func TestMe_RequiresLogin(t *testing.T) {
	app, _ := newTestApp(&fakeClient{}, "", nil)
	assert.ErrorIs(t, app.Exec(context.Background(), "me", nil), errNotLoggedIn)
	assert.ErrorIs(t, app.Exec(context.Background(), "list", nil), errNotLoggedIn)
	assert.ErrorIs(t, app.Exec(context.Background(), "update", nil), errNotLoggedIn)
}

func TestMe_UsesConfiguredToken(t *testing.T) {
	cfg := &config.Config{Token: "saved"}
	api := &fakeClient{}
	app, out := newTestApp(api, "", cfg)

	require.NoError(t, app.Exec(context.Background(), "me", nil))

	assert.Equal(t, "saved", api.token)
	assert.Contains(t, out.String(), "alice@example.com")
	assert.Contains(t, out.String(), "Name:        Alice")
	assert.Contains(t, out.String(), "Phone:       -")
}

func TestUpdate(t *testing.T) {
	api := &fakeClient{token: "tok"}
	app, out := newTestApp(api, "\n13912345678\n\n", nil)

	require.NoError(t, app.Exec(context.Background(), "update", nil))

	assert.Nil(t, api.changes.Name)
	assert.Nil(t, api.changes.Avatar)
	require.NotNil(t, api.changes.Phone)
	assert.Equal(t, "13912345678", *api.changes.Phone)
	assert.Contains(t, out.String(), "Profile updated")
}

func TestList(t *testing.T) {
	api := &fakeClient{token: "tok"}
	app, out := newTestApp(api, "", nil)

	require.NoError(t, app.Exec(context.Background(), "list", []string{"10", "5", "active"}))
	assert.Equal(t, []any{10, 5, "active"}, api.listArgs)
	assert.Contains(t, out.String(), "1 visitors")

	assert.Error(t, app.Exec(context.Background(), "list", []string{"ten"}))
}

func TestExec_Unknown(t *testing.T) {
	app, _ := newTestApp(&fakeClient{}, "", nil)
	assert.EqualError(t, app.Exec(context.Background(), "dance", nil), "unknown command: dance")
}

func TestRoot_Session(t *testing.T) {
	stubPassword(t, "hunter22", nil)
	api := &fakeClient{pingErr: errors.New("server unavailable")}
	input := strings.Join([]string{"help", "ping", "login", "alice", "me", "logout", "bogus", "exit", "me"}, "\n") + "\n"
	app, out := newTestApp(api, input, nil)

	app.Root(context.Background())

	s := out.String()
	assert.Contains(t, s, "Available commands: register, login")
	assert.Contains(t, s, "error: server unavailable")
	assert.Contains(t, s, "Login successful")
	assert.Contains(t, s, "Username:    alice")
	assert.Contains(t, s, "Logged out")
	assert.Contains(t, s, "error: unknown command: bogus")
	assert.Contains(t, s, "Bye!")
	assert.Equal(t, 1, strings.Count(s, "Username:    alice"))
}

func TestRoot_StopsOnEOF(t *testing.T) {
	app, out := newTestApp(&fakeClient{}, "help", nil)

	app.Root(context.Background())

	assert.Contains(t, out.String(), "Available commands")
}

func TestRun_OneShotClosesClient(t *testing.T) {
	api := &fakeClient{}
	app, out := newTestApp(api, "", nil)

	require.NoError(t, app.Run(context.Background(), []string{"ping"}))

	assert.True(t, api.closed)
	assert.Contains(t, out.String(), "Server is up")
}

func TestSession_SavedOnLoginRestoredAndCleared(t *testing.T) {
	stubPassword(t, "hunter22", nil)
	sessions := &fakeSessions{}

	api := &fakeClient{}
	app, _ := newTestAppWithSessions(api, sessions, "alice\n", nil)
	require.NoError(t, app.Run(context.Background(), []string{"login"}))
	assert.Equal(t, session.Session{Username: "alice", Token: "tok-alice"}, sessions.saved)
	assert.True(t, sessions.closed)

	next := &fakeClient{}
	app, out := newTestAppWithSessions(next, sessions, "", nil)
	require.NoError(t, app.Run(context.Background(), []string{"me"}))
	assert.Equal(t, "tok-alice", next.token)
	assert.Contains(t, out.String(), "Username:    alice")

	app, _ = newTestAppWithSessions(&fakeClient{}, sessions, "", nil)
	require.NoError(t, app.Run(context.Background(), []string{"logout"}))
	assert.Empty(t, sessions.saved.Token)
}

func TestSession_ConfiguredTokenWins(t *testing.T) {
	sessions := &fakeSessions{saved: session.Session{Username: "old", Token: "stale"}}
	api := &fakeClient{}
	app, _ := newTestAppWithSessions(api, sessions, "", &config.Config{Token: "fresh"})

	require.NoError(t, app.Run(context.Background(), []string{"ping"}))

	assert.Equal(t, "fresh", api.token)
}

func stubAvatarIO(t *testing.T, data []byte) *[]any {
	t.Helper()
	oldRead, oldUpload := readFile, uploadFile
	t.Cleanup(func() { readFile, uploadFile = oldRead, oldUpload })

	var uploaded []any
	readFile = func(string) ([]byte, error) { return data, nil }
	uploadFile = func(_ context.Context, url, contentType string, body []byte) error {
		uploaded = []any{url, contentType, len(body)}
		return nil
	}
	return &uploaded
}

func TestAvatar(t *testing.T) {
	uploaded := stubAvatarIO(t, []byte("png-bytes"))
	api := &fakeClient{token: "tok"}
	app, out := newTestApp(api, "", nil)

	require.NoError(t, app.Exec(context.Background(), "avatar", []string{"/home/alice/me.png"}))

	assert.Equal(t, "me.png", api.avatarFile)
	assert.Equal(t, []any{"https://s3.local/b/avatars/id-1/x.png?X-Amz-Signature=1", "image/png", 9}, *uploaded)
	assert.Contains(t, out.String(), "Avatar uploaded: https://s3.local/b/avatars/id-1/x.png")
}

func TestAvatar_Errors(t *testing.T) {
	stubAvatarIO(t, make([]byte, maxAvatarSize+1))
	app, _ := newTestApp(&fakeClient{}, "", nil)
	assert.ErrorIs(t, app.Exec(context.Background(), "avatar", []string{"me.png"}), errNotLoggedIn)

	app, _ = newTestApp(&fakeClient{token: "tok"}, "", nil)
	assert.EqualError(t, app.Exec(context.Background(), "avatar", nil), "usage: avatar <image file>")
	assert.ErrorContains(t, app.Exec(context.Background(), "avatar", []string{"big.png"}), "larger than 5 MB")
}

func TestCommandArgs(t *testing.T) {
	got := CommandArgs([]string{"-a", "host:1", "-config=x.json", "list", "-t", "3", "0", "10"})
	assert.Equal(t, []string{"list", "0", "10"}, got)
	assert.Empty(t, CommandArgs([]string{"-c", "cfg.json"}))
}
