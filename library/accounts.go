package library

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is a snapshot of the logged-in account taken at Login.
type Session struct {
	ID        uuid.UUID
	Username  string
	StartedAt time.Time
}

// AccountStore owns the account list and the single login session. It is
// not safe for concurrent use.
type AccountStore struct {
	store    UserStore
	admin    Credentials
	log      *zap.Logger
	users    map[string]User
	warnings []LoadWarning
	session  *Session
}

// NewAccountStore loads accounts from store and guarantees that the admin
// account named by admin exists afterwards. A missing file is seeded with
// that account and written back.
func NewAccountStore(store UserStore, admin Credentials, log *zap.Logger) *AccountStore {
	if log == nil {
		log = zap.NewNop()
	}
	if admin.Username == "" || admin.Password == "" {
		admin = DefaultAdmin()
	}
	a := &AccountStore{
		store: store,
		admin: admin,
		log:   log.Named("accounts"),
		users: make(map[string]User),
	}
	a.load()
	return a
}

func (a *AccountStore) load() {
	users, warnings, err := a.store.LoadUsers()
	switch {
	case errors.Is(err, ErrNoData):
		a.log.Info("accounts file not found, creating it with the default administrator")
		a.seedAdmin(true)
		return
	case err != nil:
		// Keep the unreadable file untouched; the admin exists in memory only.
		a.log.Error("failed to load accounts", zap.Error(err))
		a.seedAdmin(false)
		return
	}

	a.warnings = warnings
	for _, u := range users {
		if u.Username == a.admin.Username && !u.IsAdmin() {
			a.warnings = append(a.warnings, LoadWarning{
				Err: fmt.Errorf("%w: account %q must be an administrator, promoted", ErrCorruptRecord, u.Username),
			})
			u.Role = RoleAdmin
		}
		a.users[u.Username] = u
	}
	for _, w := range a.warnings {
		a.log.Warn("skipped corrupt accounts line",
			zap.String("file", w.File),
			zap.Int("line", w.Line),
			zap.String("reason", w.Err.Error()),
		)
	}

	if _, ok := a.users[a.admin.Username]; !ok {
		a.log.Info("administrator missing from accounts file, adding the default one")
		a.seedAdmin(true)
	}
	a.log.Info("accounts loaded", zap.Int("users", len(a.users)), zap.Int("skipped", len(a.warnings)))
}

func (a *AccountStore) seedAdmin(persist bool) {
	a.users[a.admin.Username] = User{Username: a.admin.Username, Password: a.admin.Password, Role: RoleAdmin}
	if !persist {
		return
	}
	if err := a.save(); err != nil {
		a.log.Error("failed to write default administrator", zap.Error(err))
	}
}

// Warnings returns the lines skipped while loading.
func (a *AccountStore) Warnings() []LoadWarning { return slices.Clone(a.warnings) }

// save writes accounts in username order.
func (a *AccountStore) save() error {
	users := make([]User, 0, len(a.users))
	for _, name := range a.sortedNames() {
		users = append(users, a.users[name])
	}
	return a.store.SaveUsers(users)
}

func (a *AccountStore) sortedNames() []string {
	names := make([]string, 0, len(a.users))
	for name := range a.users {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ------------------ Session ------------------

// Login starts a session for username when password matches. A failed
// attempt ends any existing session.
func (a *AccountStore) Login(username, password string) error {
	u, ok := a.users[username]
	if !ok || !u.CheckPassword(password) {
		a.session = nil
		a.log.Info("login failed", zap.String("username", username))
		return ErrInvalidCredentials
	}
	a.session = &Session{ID: uuid.New(), Username: u.Username, StartedAt: time.Now()}
	a.log.Info("login", zap.String("username", username), zap.Stringer("session", a.session.ID))
	return nil
}

// Logout ends the current session, if any.
func (a *AccountStore) Logout() {
	if a.session != nil {
		a.log.Info("logout", zap.String("username", a.session.Username), zap.Stringer("session", a.session.ID))
	}
	a.session = nil
}

// current resolves the session to its account. A session whose account has
// gone away is treated as logged out.
func (a *AccountStore) current() (User, bool) {
	if a.session == nil {
		return User{}, false
	}
	u, ok := a.users[a.session.Username]
	if !ok {
		a.session = nil
		return User{}, false
	}
	return u, true
}

// IsLoggedIn reports whether a session is active.
func (a *AccountStore) IsLoggedIn() bool {
	_, ok := a.current()
	return ok
}

// IsAdmin reports whether the session user is an administrator.
func (a *AccountStore) IsAdmin() bool {
	u, ok := a.current()
	return ok && u.IsAdmin()
}

// GetCurrentUser returns the session username, or "" when logged out.
func (a *AccountStore) GetCurrentUser() string {
	u, ok := a.current()
	if !ok {
		return ""
	}
	return u.Username
}

// Session returns a copy of the active session.
func (a *AccountStore) Session() (Session, bool) {
	if _, ok := a.current(); !ok {
		return Session{}, false
	}
	return *a.session, true
}

func (a *AccountStore) sessionField() zap.Field {
	if a.session == nil {
		return zap.Skip()
	}
	return zap.Stringer("session", a.session.ID)
}

// ------------------ Administration ------------------

// CreateUser adds an account with the given role and persists the list. If
// the save fails the account is removed again.
func (a *AccountStore) CreateUser(username, password string, role Role) error {
	if !a.IsAdmin() {
		return fmt.Errorf("create user: %w", ErrAccessDenied)
	}
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}
	if strings.ContainsAny(username+password, userFieldSep+"\r\n") {
		return fmt.Errorf("%w: username and password must not contain %q", ErrInvalidInput, userFieldSep)
	}
	if _, ok := a.users[username]; ok {
		return fmt.Errorf("user %q: %w", username, ErrAlreadyExists)
	}

	a.users[username] = User{Username: username, Password: password, Role: role}
	if err := a.save(); err != nil {
		delete(a.users, username)
		a.log.Error("failed to save new account, rolled back", zap.String("username", username), zap.Error(err))
		return fmt.Errorf("create user %q: %w", username, err)
	}

	a.log.Info("account created", zap.String("username", username), zap.Stringer("role", role), a.sessionField())
	return nil
}

// DeleteUser removes an account and persists the list. The built-in
// administrator cannot be deleted. If the save fails the account is
// restored.
func (a *AccountStore) DeleteUser(username string) error {
	if !a.IsAdmin() {
		return fmt.Errorf("delete user: %w", ErrAccessDenied)
	}
	if username == a.admin.Username {
		return fmt.Errorf("user %q: %w", username, ErrProtectedAccount)
	}
	u, ok := a.users[username]
	if !ok {
		return fmt.Errorf("user %q: %w", username, ErrNotFound)
	}

	delete(a.users, username)
	if err := a.save(); err != nil {
		a.users[username] = u
		a.log.Error("failed to save after deleting account, restored", zap.String("username", username), zap.Error(err))
		return fmt.Errorf("delete user %q: %w", username, err)
	}

	a.log.Info("account deleted", zap.String("username", username), a.sessionField())
	if a.session != nil && a.session.Username == username {
		a.session = nil
	}
	return nil
}

// ListUsers returns every account's name and role, ordered by username.
func (a *AccountStore) ListUsers() ([]UserInfo, error) {
	if !a.IsAdmin() {
		return nil, fmt.Errorf("list users: %w", ErrAccessDenied)
	}
	out := make([]UserInfo, 0, len(a.users))
	for _, name := range a.sortedNames() {
		out = append(out, UserInfo{Username: name, Role: a.users[name].Role})
	}
	return out, nil
}

// Len returns the number of accounts.
func (a *AccountStore) Len() int { return len(a.users) }
