package admin

import (
	"net/http"

	"github.com/WaveLink/WL-Backend/internal/auth"
	"github.com/WaveLink/WL-Backend/internal/middleware"
	"github.com/WaveLink/WL-Backend/internal/session"
	"github.com/WaveLink/WL-Backend/internal/utils"
	"github.com/WaveLink/WL-Backend/internal/web"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	AddEmployeePath = "/add_employee"

	msgPasswordMismatch = "Passwords do not match!"
	msgEmailExists      = "Email already exists!"
	msgEmployeeAdded    = "Employee added successfully!"
	msgInvalidEmployee  = "Full name, email, phone, password and category are required."
)

// Stats are the dashboard counters. A zero value renders as "no data".
type Stats struct {
	TotalUsers int64 `json:"total_users"`
	Employees  int64 `json:"employees"`
	Passengers int64 `json:"passengers"`
}

type Handler struct {
	Accounts auth.Accounts
	Hasher   *auth.Hasher
	Log      *zap.SugaredLogger
}

func NewHandler(accounts auth.Accounts, hasher *auth.Hasher, log *zap.SugaredLogger) *Handler {
	return &Handler{Accounts: accounts, Hasher: hasher, Log: log}
}

func (h *Handler) stats(r *http.Request) (Stats, error) {
	var st Stats
	var err error
	if st.TotalUsers, err = h.Accounts.CountByRole(r.Context(), ""); err != nil {
		return Stats{}, err
	}
	if st.Employees, err = h.Accounts.CountByRole(r.Context(), session.RoleEmployee); err != nil {
		return Stats{}, err
	}
	if st.Passengers, err = h.Accounts.CountByRole(r.Context(), session.RolePassenger); err != nil {
		return Stats{}, err
	}
	return st, nil
}

// Dashboard renders the account counters. When counting fails the page still
// renders, with empty stats and the error flashed.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	st, err := h.stats(r)
	if err != nil {
		web.Report(r, h.Log, web.Upstream(err), "Error loading dashboard")
		web.Render(w, r, "admin_dashboard", map[string]interface{}{"stats": Stats{}})
		return
	}
	web.Render(w, r, "admin_dashboard", map[string]interface{}{"stats": st})
}

func (h *Handler) AddEmployeeForm(w http.ResponseWriter, r *http.Request) {
	web.Render(w, r, "add_employee", nil)
}

type employeeForm struct {
	FullName         string `validate:"required,max=120"`
	Email            string `validate:"required,email,max=254"`
	Phone            string `validate:"required,max=32"`
	Password         string `validate:"required,min=6,max=72"`
	ConfirmPassword  string
	EmployeeCategory string `validate:"required,max=64"`
	TerminalID       string `validate:"omitempty,uuid"`
}

func (h *Handler) AddEmployee(w http.ResponseWriter, r *http.Request) {
	if err := web.ParseForm(w, r); err != nil {
		web.Fail(w, r, h.Log, err, "Error adding employee", AddEmployeePath)
		return
	}

	form := employeeForm{
		FullName:         utils.NormalizeName(r.PostFormValue("full_name")),
		Email:            utils.NormalizeEmail(r.PostFormValue("email")),
		Phone:            r.PostFormValue("phone"),
		Password:         r.PostFormValue("password"),
		ConfirmPassword:  r.PostFormValue("confirm_password"),
		EmployeeCategory: r.PostFormValue("employee_category"),
		TerminalID:       r.PostFormValue("terminal_id"),
	}

	if form.Password != form.ConfirmPassword {
		web.Flash(r, session.FlashError, msgPasswordMismatch)
		web.Redirect(w, r, AddEmployeePath)
		return
	}
	if err := web.Validate(form); err != nil {
		web.Flash(r, session.FlashError, msgInvalidEmployee)
		web.Redirect(w, r, AddEmployeePath)
		return
	}

	exists, err := h.Accounts.EmailExists(r.Context(), form.Email)
	if err != nil {
		web.Fail(w, r, h.Log, web.Upstream(err), "Error adding employee", AddEmployeePath)
		return
	}
	if exists {
		web.Flash(r, session.FlashError, msgEmailExists)
		web.Redirect(w, r, AddEmployeePath)
		return
	}

	hashed, err := h.Hasher.Hash(form.Password)
	if err != nil {
		web.Fail(w, r, h.Log, err, "Error adding employee", AddEmployeePath)
		return
	}

	category := form.EmployeeCategory
	user := auth.User{
		Email:            form.Email,
		Password:         hashed,
		FullName:         form.FullName,
		Phone:            form.Phone,
		Role:             session.RoleEmployee,
		EmployeeCategory: &category,
		IsActive:         true,
	}
	if form.TerminalID != "" {
		terminal := form.TerminalID
		user.TerminalID = &terminal
	}

	if err := h.Accounts.Create(r.Context(), &user); err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			web.Flash(r, session.FlashError, msgEmailExists)
			web.Redirect(w, r, AddEmployeePath)
			return
		}
		web.Fail(w, r, h.Log, web.Upstream(err), "Error adding employee", AddEmployeePath)
		return
	}

	h.Log.Infow("employee added", "user_id", user.ID, "added_by", session.FromContext(r.Context()).UserID)
	web.Flash(r, session.FlashSuccess, msgEmployeeAdded)
	web.Redirect(w, r, middleware.AdminDashboardPath)
}
