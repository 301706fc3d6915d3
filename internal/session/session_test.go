package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.March, 3, 9, 30, 0, 0, time.UTC)

func newTestManager(t *testing.T, now func() time.Time) *Manager {
	t.Helper()
	codec, err := NewCodec("test-secret")
	require.NoError(t, err)
	return NewManager(codec, Options{TTL: 24 * time.Hour, Now: now})
}

func employeeIdentity() Identity {
	return Identity{
		UserID:   "u-1",
		Email:    "ana@wavelink.test",
		FullName: "Ana Reyes",
		Role:     RoleEmployee,
		Category: "technical",
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Admin ")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("driver")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestNewCodec_EmptySecret(t *testing.T) {
	_, err := NewCodec("")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestCodec_RoundTrip(t *testing.T) {
	codec, err := NewCodec("test-secret")
	require.NoError(t, err)

	s := &Session{}
	s.Login(employeeIdentity(), testNow, 24*time.Hour)
	s.AddFlash(FlashSuccess, "Welcome back, Ana Reyes!")

	token, err := codec.Encode(s)
	require.NoError(t, err)

	got, err := codec.Decode(token, testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, employeeIdentity(), got.Identity())
	assert.True(t, got.Permanent)
	assert.True(t, got.IssuedAt.Equal(testNow))
	assert.True(t, got.ExpiresAt.Equal(testNow.Add(24*time.Hour)))
	require.Len(t, got.Flashes, 1)
	assert.Equal(t, "Welcome back, Ana Reyes!", got.Flashes[0].Message)
}

func TestCodec_PayloadHasNoCredentials(t *testing.T) {
	codec, err := NewCodec("test-secret")
	require.NoError(t, err)

	s := &Session{}
	s.Login(employeeIdentity(), testNow, time.Hour)
	token, err := codec.Encode(s)
	require.NoError(t, err)

	mc := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, mc)
	require.NoError(t, err)

	for key := range mc {
		assert.NotContains(t, []string{"password", "hashed_password"}, key)
	}
	assert.Equal(t, "u-1", mc["sub"])
	assert.Equal(t, "ana@wavelink.test", mc["email"])
	assert.Equal(t, "Ana Reyes", mc["name"])
	assert.Equal(t, "employee", mc["role"])
	assert.Equal(t, "technical", mc["category"])
}

func TestCodec_PayloadFieldsAreIdentityPlusTerminal(t *testing.T) {
	codec, err := NewCodec("test-secret")
	require.NoError(t, err)

	id := employeeIdentity()
	id.TerminalID = "t-1"
	s := &Session{}
	s.Login(id, testNow, time.Hour)
	token, err := codec.Encode(s)
	require.NoError(t, err)

	mc := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, mc)
	require.NoError(t, err)

	keys := make([]string, 0, len(mc))
	for key := range mc {
		keys = append(keys, key)
	}
	assert.ElementsMatch(t, []string{"sub", "email", "name", "role", "category", "terminal_id", "permanent", "iat", "exp"}, keys)
	assert.Equal(t, "t-1", mc["terminal_id"])

	got, err := codec.Decode(token, testNow)
	require.NoError(t, err)
	assert.Equal(t, "t-1", got.TerminalID)
}

func TestCodec_RejectsTamperedAndForeignTokens(t *testing.T) {
	codec, err := NewCodec("test-secret")
	require.NoError(t, err)
	other, err := NewCodec("other-secret")
	require.NoError(t, err)

	s := &Session{}
	s.Login(employeeIdentity(), testNow, time.Hour)
	token, err := other.Encode(s)
	require.NoError(t, err)

	_, err = codec.Decode(token, testNow)
	assert.ErrorIs(t, err, ErrInvalidCookie)

	_, err = codec.Decode("not-a-token", testNow)
	assert.ErrorIs(t, err, ErrInvalidCookie)
}

func TestCodec_RejectsExpired(t *testing.T) {
	codec, err := NewCodec("test-secret")
	require.NoError(t, err)

	s := &Session{}
	s.Login(employeeIdentity(), testNow, time.Hour)
	token, err := codec.Encode(s)
	require.NoError(t, err)

	_, err = codec.Decode(token, testNow.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrInvalidCookie)
}

func TestSession_ClearDropsEverything(t *testing.T) {
	s := &Session{}
	s.Login(employeeIdentity(), testNow, time.Hour)
	s.AddFlash(FlashInfo, "pending")

	s.Clear()

	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Flashes)
	assert.Equal(t, Identity{}, s.Identity())
	assert.False(t, s.Permanent)
}

func TestSession_PopFlashes(t *testing.T) {
	s := &Session{}
	s.AddFlash(FlashError, "one")
	s.AddFlash(FlashSuccess, "two")

	got := s.PopFlashes()
	require.Len(t, got, 2)
	assert.Equal(t, "one", got[0].Message)
	assert.Empty(t, s.PopFlashes())
}

func TestManager_LoadAnonymousWithoutCookie(t *testing.T) {
	m := newTestManager(t, func() time.Time { return testNow })

	var got *Session
	h := m.Load(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, got)
	assert.False(t, got.Authenticated())
}

func TestManager_LoadAuthenticatedCookie(t *testing.T) {
	m := newTestManager(t, func() time.Time { return testNow })

	s := &Session{}
	s.Login(employeeIdentity(), testNow, m.TTL())
	c, err := m.Cookie(s)
	require.NoError(t, err)
	assert.Equal(t, 24*60*60, c.MaxAge)
	assert.True(t, c.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	got := m.Read(req)
	assert.True(t, got.Authenticated())
	assert.Equal(t, RoleEmployee, got.Role)
}

func TestManager_ExpiredCookieIsAnonymous(t *testing.T) {
	now := testNow
	m := newTestManager(t, func() time.Time { return now })

	s := &Session{}
	s.Login(employeeIdentity(), testNow, m.TTL())
	c, err := m.Cookie(s)
	require.NoError(t, err)

	now = testNow.Add(25 * time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)

	assert.False(t, m.Read(req).Authenticated())
}

func TestManager_SaveEmptySessionDeletesExistingCookie(t *testing.T) {
	m := newTestManager(t, func() time.Time { return testNow })

	s := &Session{}
	s.Login(employeeIdentity(), testNow, m.TTL())
	c, err := m.Cookie(s)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(c)
	loaded := m.Read(req)
	loaded.Clear()

	rec := httptest.NewRecorder()
	require.NoError(t, m.Save(rec, loaded))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestManager_SaveUntouchedAnonymousWritesNothing(t *testing.T) {
	m := newTestManager(t, func() time.Time { return testNow })

	rec := httptest.NewRecorder()
	require.NoError(t, m.Save(rec, &Session{}))
	assert.Empty(t, rec.Result().Cookies())
}

func TestManager_SaveFlashOnlySessionIsBrowserScoped(t *testing.T) {
	m := newTestManager(t, func() time.Time { return testNow })

	s := &Session{}
	s.AddFlash(FlashWarning, "Please login to access this page")
	rec := httptest.NewRecorder()
	require.NoError(t, m.Save(rec, s))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, 0, cookies[0].MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(cookies[0])
	got := m.Read(req)
	assert.False(t, got.Authenticated())
	require.Len(t, got.Flashes, 1)
	assert.Equal(t, FlashWarning, got.Flashes[0].Category)
}

func TestSave_RequiresLoadedRequest(t *testing.T) {
	rec := httptest.NewRecorder()
	err := Save(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Error(t, err)
}
