package auth

import (
	"fmt"
	"net/http"

	"github.com/WaveLink/WL-Backend/internal/db"
	"github.com/WaveLink/WL-Backend/internal/middleware"
	"github.com/WaveLink/WL-Backend/internal/session"
	"github.com/WaveLink/WL-Backend/internal/utils"
	"github.com/WaveLink/WL-Backend/internal/web"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	msgPasswordMismatch = "Passwords do not match!"
	msgEmailRegistered  = "Email already registered!"
	msgRegistered       = "Registration successful! Please login."
	msgInvalidForm      = "Please fill in all required fields with valid values."
	msgCredsRequired    = "Email and password are required"
	msgInvalidLogin     = "Invalid email or password"
	msgLoggedOut        = "You have been logged out successfully"
	msgUserNotFound     = "User not found"
	msgProfileUpdated   = "Profile updated successfully!"
)

type Handler struct {
	Accounts Accounts
	Hasher   *Hasher
	Sessions *session.Manager
	Log      *zap.SugaredLogger
}

func NewHandler(accounts Accounts, hasher *Hasher, sessions *session.Manager, log *zap.SugaredLogger) *Handler {
	return &Handler{Accounts: accounts, Hasher: hasher, Sessions: sessions, Log: log}
}

// Index sends signed-in users to their dashboard and shows everyone else
// the landing page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s.Authenticated() && s.Role.Valid() {
		web.Redirect(w, r, middleware.DashboardFor(s.Role))
		return
	}
	web.Render(w, r, "landing", nil)
}

func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	web.Render(w, r, "register", nil)
}

type registerForm struct {
	FullName        string `validate:"required,max=120"`
	Email           string `validate:"required,email,max=254"`
	Phone           string `validate:"max=32"`
	Password        string `validate:"required,min=6,max=72"`
	ConfirmPassword string
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := web.ParseForm(w, r); err != nil {
		web.Fail(w, r, h.Log, err, "Error", "/register")
		return
	}

	form := registerForm{
		FullName:        utils.NormalizeName(r.PostFormValue("full_name")),
		Email:           utils.NormalizeEmail(r.PostFormValue("email")),
		Phone:           r.PostFormValue("phone"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}

	if form.Password != form.ConfirmPassword {
		web.Flash(r, session.FlashError, msgPasswordMismatch)
		web.Redirect(w, r, "/register")
		return
	}
	if err := web.Validate(form); err != nil {
		web.Flash(r, session.FlashError, msgInvalidForm)
		web.Redirect(w, r, "/register")
		return
	}

	exists, err := h.Accounts.EmailExists(r.Context(), form.Email)
	if err != nil {
		web.Fail(w, r, h.Log, web.Upstream(err), "Error", "/register")
		return
	}
	if exists {
		web.Flash(r, session.FlashError, msgEmailRegistered)
		web.Redirect(w, r, "/register")
		return
	}

	hashed, err := h.Hasher.Hash(form.Password)
	if err != nil {
		web.Fail(w, r, h.Log, err, "Error", "/register")
		return
	}

	user := User{
		Email:    form.Email,
		Password: hashed,
		FullName: form.FullName,
		Phone:    form.Phone,
		Role:     session.RolePassenger,
		IsActive: true,
	}
	if err := h.Accounts.Create(r.Context(), &user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			web.Flash(r, session.FlashError, msgEmailRegistered)
			web.Redirect(w, r, "/register")
			return
		}
		web.Fail(w, r, h.Log, web.Upstream(err), "Error", "/register")
		return
	}

	h.Log.Infow("passenger registered", "user_id", user.ID)
	web.Flash(r, session.FlashSuccess, msgRegistered)
	web.Redirect(w, r, middleware.LoginPath)
}

func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	web.Render(w, r, "login", nil)
}

// Login checks the credentials and, on success, binds the account to the
// session. Unknown email, wrong password, inactive account and unusable role
// all produce the same message.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := web.ParseForm(w, r); err != nil {
		web.Fail(w, r, h.Log, err, "Error", middleware.LoginPath)
		return
	}

	email := utils.NormalizeEmail(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		web.Flash(r, session.FlashError, msgCredsRequired)
		web.Redirect(w, r, middleware.LoginPath)
		return
	}

	user, err := h.Accounts.FindByEmail(r.Context(), email)
	switch {
	case errors.Is(err, db.ErrNotFound):
		h.Hasher.Miss(password)
		h.rejectLogin(w, r, "unknown email")
		return
	case err != nil:
		web.Fail(w, r, h.Log, web.Upstream(err), "Error", middleware.LoginPath)
		return
	}

	if !h.Hasher.Check(user.Password, password) {
		h.rejectLogin(w, r, "password mismatch")
		return
	}
	if !user.IsActive {
		h.rejectLogin(w, r, "inactive account")
		return
	}
	if !user.Role.Valid() {
		h.Log.Warnw("account has unusable role", "user_id", user.ID, "role", user.Role)
		h.rejectLogin(w, r, "unusable role")
		return
	}

	s := session.FromContext(r.Context())
	s.Login(user.Identity(), h.Sessions.Now(), h.Sessions.TTL())

	h.Log.Infow("login", "user_id", user.ID, "role", user.Role)
	web.Flash(r, session.FlashSuccess, fmt.Sprintf("Welcome back, %s!", user.FullName))
	web.Redirect(w, r, middleware.DashboardFor(user.Role))
}

func (h *Handler) rejectLogin(w http.ResponseWriter, r *http.Request, reason string) {
	h.Log.Infow("login rejected", "error", web.ErrCredentialInvalid, "reason", reason)
	web.Flash(r, session.FlashError, msgInvalidLogin)
	web.Redirect(w, r, middleware.LoginPath)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	s.Clear()
	s.AddFlash(session.FlashSuccess, msgLoggedOut)
	web.Redirect(w, r, "/")
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())

	user, err := h.Accounts.FindByID(r.Context(), s.UserID)
	if errors.Is(err, db.ErrNotFound) {
		web.Flash(r, session.FlashError, msgUserNotFound)
		web.Redirect(w, r, "/")
		return
	}
	if err != nil {
		web.Fail(w, r, h.Log, web.Upstream(err), "Error loading profile", "/")
		return
	}

	web.Render(w, r, "profile", user.Profile())
}

type profileForm struct {
	FullName string `validate:"required,max=120"`
	Phone    string `validate:"max=32"`
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if err := web.ParseForm(w, r); err != nil {
		web.Fail(w, r, h.Log, err, "Error updating profile", "/profile")
		return
	}

	form := profileForm{
		FullName: utils.NormalizeName(r.PostFormValue("full_name")),
		Phone:    r.PostFormValue("phone"),
	}
	if err := web.Validate(form); err != nil {
		web.Flash(r, session.FlashError, msgInvalidForm)
		web.Redirect(w, r, "/profile")
		return
	}

	s := session.FromContext(r.Context())
	err := h.Accounts.UpdateProfile(r.Context(), s.UserID, form.FullName, form.Phone)
	if errors.Is(err, db.ErrNotFound) {
		web.Flash(r, session.FlashError, msgUserNotFound)
		web.Redirect(w, r, "/")
		return
	}
	if err != nil {
		web.Fail(w, r, h.Log, web.Upstream(err), "Error updating profile", "/profile")
		return
	}

	s.FullName = form.FullName
	web.Flash(r, session.FlashSuccess, msgProfileUpdated)
	web.Redirect(w, r, "/profile")
}
