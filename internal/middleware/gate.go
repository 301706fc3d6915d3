package middleware

import (
	"net/http"

	"github.com/WaveLink/WL-Backend/internal/session"
	"github.com/WaveLink/WL-Backend/internal/web"
	"github.com/pkg/errors"
)

const (
	LoginPath              = "/login"
	AdminDashboardPath     = "/admin/dashboard"
	EmployeeDashboardPath  = "/employee/dashboard"
	PassengerDashboardPath = "/passenger/dashboard"

	LoginMessage        = "Please login to access this page"
	UnauthorizedMessage = "Unauthorized access. You do not have permission to view this page."
)

// DashboardFor maps a role to its landing page. Unknown roles land on the
// passenger dashboard.
func DashboardFor(role session.Role) string {
	switch role {
	case session.RoleAdmin:
		return AdminDashboardPath
	case session.RoleEmployee:
		return EmployeeDashboardPath
	default:
		return PassengerDashboardPath
	}
}

// Requirement is what a protected route demands of the session: a login
// only, any role, or one specific role.
type Requirement struct {
	any  bool
	role session.Role
}

// Login requires an authenticated session and nothing more.
func Login() Requirement { return Requirement{} }

// Any requires an authenticated session of any role.
func Any() Requirement { return Requirement{any: true} }

// Role requires an authenticated session with exactly role.
func Role(role session.Role) Requirement { return Requirement{role: role} }

// Check decides s against q. Identity is checked before role, so an
// anonymous caller never sees ErrAuthorizationDenied.
func (q Requirement) Check(s *session.Session) error {
	if !s.Authenticated() {
		return web.ErrAuthenticationMissing
	}
	if q.any {
		return nil
	}
	if q.role != "" && s.Role != q.role {
		return web.ErrAuthorizationDenied
	}
	return nil
}

// Gate runs next only for sessions satisfying q; everything else is
// redirected with a flash. It reads the session and nothing else.
func Gate(q Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := session.FromContext(r.Context())

			err := q.Check(s)
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, web.ErrAuthenticationMissing):
				s.AddFlash(session.FlashWarning, LoginMessage)
				web.Redirect(w, r, LoginPath)
			default:
				s.AddFlash(session.FlashError, UnauthorizedMessage)
				web.Redirect(w, r, DashboardFor(s.Role))
			}
		})
	}
}

func LoginRequired() func(http.Handler) http.Handler { return Gate(Login()) }

func AnyRole() func(http.Handler) http.Handler { return Gate(Any()) }

func RequireRole(role session.Role) func(http.Handler) http.Handler { return Gate(Role(role)) }
