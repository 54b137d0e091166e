package odoo

import (
	"fmt"

	"go.uber.org/zap"
)

// Login is the identity a report is produced for: either the authenticated
// user or, when email is set, another user impersonated through the same session.
type Login struct {
	*Session
	email    string
	employee *Employee
}

// AsSelf returns a login acting as the authenticated user
func (s *Session) AsSelf() *Login {
	return &Login{Session: s}
}

// Impersonate returns a login acting as the user registered with email
func (s *Session) Impersonate(email string) *Login {
	return &Login{Session: s, email: email}
}

// Impersonated reports whether the login acts as a specific e-mail
func (l *Login) Impersonated() bool {
	return l.email != ""
}

// TargetEmail returns the impersonated e-mail, "" when acting as self
func (l *Login) TargetEmail() string {
	return l.email
}

// Identity returns a stable key for the login, used to scope caches and logs
func (l *Login) Identity() string {
	if l.email != "" {
		return l.email
	}
	return l.Username
}

// Employee resolves the employee behind the login. The result is cached for the
// lifetime of the login.
func (l *Login) Employee() (*Employee, error) {
	if l.employee != nil {
		return l.employee, nil
	}

	userID := l.UID
	if l.email != "" {
		id, err := l.UserIDByEmail(l.email)
		if err != nil {
			return nil, err
		}
		userID = id
	}

	emp, err := l.EmployeeByUser(userID)
	if err != nil {
		return nil, err
	}

	l.Logger().Debug("Resolved employee",
		zap.String("identity", l.Identity()),
		zap.Int64("employee_id", emp.ID),
		zap.Int64("calendar_id", emp.CalendarID))

	l.employee = emp
	return emp, nil
}

// RecipientEmail returns where reports for this login are mailed
func (l *Login) RecipientEmail() (string, error) {
	if l.email != "" {
		return l.email, nil
	}
	email, err := l.UserEmail(l.UID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve recipient: %w", err)
	}
	return email, nil
}
