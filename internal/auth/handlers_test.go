package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/WaveLink/WL-Backend/internal/auth"
	"github.com/WaveLink/WL-Backend/internal/db"
	"github.com/WaveLink/WL-Backend/internal/logging"
	"github.com/WaveLink/WL-Backend/internal/session"
	"github.com/WaveLink/WL-Backend/internal/session/sessiontest"
	"github.com/WaveLink/WL-Backend/internal/web"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// mockAccounts is an in-memory Accounts.
type mockAccounts struct {
	mu    sync.Mutex
	users map[string]*auth.User
	err   error
}

func newMockAccounts() *mockAccounts {
	return &mockAccounts{users: map[string]*auth.User{}}
}

func (m *mockAccounts) add(u auth.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = &u
}

func (m *mockAccounts) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *mockAccounts) FindByID(ctx context.Context, id string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockAccounts) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (m *mockAccounts) Create(ctx context.Context, u *auth.User) error {
	if m.err != nil {
		return m.err
	}
	if u.ID == "" {
		u.ID = "u-" + u.Email
	}
	m.add(*u)
	return nil
}

func (m *mockAccounts) UpdateProfile(ctx context.Context, id, fullName, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return db.ErrNotFound
	}
	u.FullName, u.Phone = fullName, phone
	return nil
}

func (m *mockAccounts) CountByRole(ctx context.Context, role session.Role) (int64, error) {
	return 0, nil
}

type fixture struct {
	accounts *mockAccounts
	sessions *session.Manager
	router   http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	hasher, err := auth.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)

	f := &fixture{accounts: newMockAccounts(), sessions: sessiontest.NewManager(t)}
	h := auth.NewHandler(f.accounts, hasher, f.sessions, logging.Nop())

	r := chi.NewRouter()
	r.Use(f.sessions.Load)
	auth.RegisterRoutes(r, h)
	f.router = r
	return f
}

func (f *fixture) addUser(t *testing.T, id, email, password string, role session.Role) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	f.accounts.add(auth.User{ID: id, Email: email, Password: string(hashed), FullName: "Jane Doe", Role: role, IsActive: true})
}

func (f *fixture) post(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, m *session.Manager, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == m.CookieName() {
			return c
		}
	}
	t.Fatalf("response set no session cookie")
	return nil
}

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)
	category, terminal := "technical", "t-9"
	hashed, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	f.accounts.add(auth.User{
		ID: "u-1", Email: "jane@wavelink.test", Password: string(hashed), FullName: "Jane Doe",
		Role: session.RoleEmployee, EmployeeCategory: &category, TerminalID: &terminal, IsActive: true,
	})

	rec := f.post("/login", url.Values{"email": {" Jane@WaveLink.test "}, "password": {"secret1"}}, nil)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/employee/dashboard", rec.Header().Get("Location"))

	s := sessiontest.Read(t, f.sessions, rec)
	require.NotNil(t, s)
	assert.Equal(t, session.Identity{
		UserID: "u-1", Email: "jane@wavelink.test", FullName: "Jane Doe",
		Role: session.RoleEmployee, Category: "technical", TerminalID: "t-9",
	}, s.Identity())
	assert.True(t, s.Permanent)
	assert.Equal(t, sessiontest.Now.Add(24*time.Hour).Unix(), s.ExpiresAt.Unix())
	assert.Equal(t, []string{"Welcome back, Jane Doe!"}, sessiontest.Flashes(t, f.sessions, rec))
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u-1", "jane@wavelink.test", "secret1", session.RolePassenger)
	hashed, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	f.accounts.add(auth.User{ID: "u-2", Email: "gone@wavelink.test", Password: string(hashed), Role: session.RolePassenger, IsActive: false})

	attempts := map[string]url.Values{
		"unknown email":  {"email": {"nobody@wavelink.test"}, "password": {"secret1"}},
		"wrong password": {"email": {"jane@wavelink.test"}, "password": {"wrong"}},
		"inactive":       {"email": {"gone@wavelink.test"}, "password": {"secret1"}},
	}

	for name, form := range attempts {
		t.Run(name, func(t *testing.T) {
			rec := f.post("/login", form, nil)

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/login", rec.Header().Get("Location"))
			assert.Equal(t, []string{"Invalid email or password"}, sessiontest.Flashes(t, f.sessions, rec))
			assert.False(t, sessiontest.Read(t, f.sessions, rec).Authenticated())
		})
	}
}

func TestLogin_MissingFields(t *testing.T) {
	f := newFixture(t)

	rec := f.post("/login", url.Values{"email": {"jane@wavelink.test"}}, nil)

	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Equal(t, []string{"Email and password are required"}, sessiontest.Flashes(t, f.sessions, rec))
}

func TestLogin_UpstreamFailureStaysAnonymous(t *testing.T) {
	f := newFixture(t)
	f.accounts.err = errors.New("dial tcp: connection refused")

	rec := f.post("/login", url.Values{"email": {"jane@wavelink.test"}, "password": {"x"}}, nil)

	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Equal(t, []string{"Error: dial tcp: connection refused"}, sessiontest.Flashes(t, f.sessions, rec))
	assert.False(t, sessiontest.Read(t, f.sessions, rec).Authenticated())
}

func TestLogin_UnusableRoleRejected(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u-1", "jane@wavelink.test", "secret1", session.Role("driver"))

	rec := f.post("/login", url.Values{"email": {"jane@wavelink.test"}, "password": {"secret1"}}, nil)

	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.False(t, sessiontest.Read(t, f.sessions, rec).Authenticated())
}

func TestRegister(t *testing.T) {
	t.Run("password mismatch", func(t *testing.T) {
		f := newFixture(t)
		rec := f.post("/register", url.Values{
			"full_name": {"Jane"}, "email": {"jane@wavelink.test"}, "password": {"secret1"}, "confirm_password": {"secret2"},
		}, nil)

		assert.Equal(t, "/register", rec.Header().Get("Location"))
		assert.Equal(t, []string{"Passwords do not match!"}, sessiontest.Flashes(t, f.sessions, rec))
	})

	t.Run("email taken", func(t *testing.T) {
		f := newFixture(t)
		f.addUser(t, "u-1", "jane@wavelink.test", "secret1", session.RolePassenger)

		rec := f.post("/register", url.Values{
			"full_name": {"Jane"}, "email": {"JANE@wavelink.test"}, "password": {"secret1"}, "confirm_password": {"secret1"},
		}, nil)

		assert.Equal(t, "/register", rec.Header().Get("Location"))
		assert.Equal(t, []string{"Email already registered!"}, sessiontest.Flashes(t, f.sessions, rec))
	})

	t.Run("success stores a hash", func(t *testing.T) {
		f := newFixture(t)
		rec := f.post("/register", url.Values{
			"full_name": {"  Jane   Doe "}, "email": {"Jane@WaveLink.test"}, "phone": {"555"},
			"password": {"secret1"}, "confirm_password": {"secret1"},
		}, nil)

		assert.Equal(t, "/login", rec.Header().Get("Location"))
		assert.Equal(t, []string{"Registration successful! Please login."}, sessiontest.Flashes(t, f.sessions, rec))

		u, err := f.accounts.FindByEmail(context.Background(), "jane@wavelink.test")
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", u.FullName)
		assert.Equal(t, session.RolePassenger, u.Role)
		assert.NotEqual(t, "secret1", u.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret1")))
	})
}

func TestLogout_ThenProtectedPageIsAnonymous(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u-1", "jane@wavelink.test", "secret1", session.RolePassenger)

	login := f.post("/login", url.Values{"email": {"jane@wavelink.test"}, "password": {"secret1"}}, nil)
	logout := f.get("/logout", sessionCookie(t, f.sessions, login))

	assert.Equal(t, http.StatusFound, logout.Code)
	assert.Equal(t, "/", logout.Header().Get("Location"))
	after := sessiontest.Read(t, f.sessions, logout)
	require.NotNil(t, after)
	assert.False(t, after.Authenticated())
	assert.Equal(t, []string{"You have been logged out successfully"}, sessiontest.Flashes(t, f.sessions, logout))

	rec := f.get("/profile", sessionCookie(t, f.sessions, logout))
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	// The goodbye flash is still queued behind the login warning.
	next := sessiontest.Read(t, f.sessions, rec)
	require.NotNil(t, next)
	assert.False(t, next.Authenticated())
	assert.Equal(t, []session.Flash{
		{Category: session.FlashSuccess, Message: "You have been logged out successfully"},
		{Category: session.FlashWarning, Message: "Please login to access this page"},
	}, next.Flashes)
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u-1", "jane@wavelink.test", "secret1", session.RolePassenger)
	cookie := sessiontest.LoginCookie(t, f.sessions, session.Identity{UserID: "u-1", Role: session.RolePassenger})

	rec := f.get("/profile", cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "$2a$")

	var page struct {
		View string       `json:"view"`
		Data auth.Profile `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, "profile", page.View)
	assert.Equal(t, "jane@wavelink.test", page.Data.Email)
	assert.Equal(t, "Passenger", page.Data.RoleLabel)
}

func TestProfile_UserNotFound(t *testing.T) {
	f := newFixture(t)
	cookie := sessiontest.LoginCookie(t, f.sessions, session.Identity{UserID: "ghost", Role: session.RolePassenger})

	rec := f.get("/profile", cookie)

	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, []string{"User not found"}, sessiontest.Flashes(t, f.sessions, rec))
}

func TestUpdateProfile_RefreshesSessionName(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u-1", "jane@wavelink.test", "secret1", session.RolePassenger)
	cookie := sessiontest.LoginCookie(t, f.sessions, session.Identity{UserID: "u-1", FullName: "Jane Doe", Role: session.RolePassenger})

	rec := f.post("/profile", url.Values{"full_name": {"Jane Q. Doe"}, "phone": {"555-0100"}}, cookie)

	assert.Equal(t, "/profile", rec.Header().Get("Location"))
	s := sessiontest.Read(t, f.sessions, rec)
	require.NotNil(t, s)
	assert.Equal(t, "Jane Q. Doe", s.FullName)

	u, err := f.accounts.FindByID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "555-0100", u.Phone)
}

func TestIndex(t *testing.T) {
	f := newFixture(t)

	rec := f.get("/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page web.Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, "landing", page.View)

	cookie := sessiontest.LoginCookie(t, f.sessions, session.Identity{UserID: "u-1", Role: session.RoleAdmin})
	rec = f.get("/", cookie)
	assert.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))
}
