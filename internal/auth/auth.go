// Package auth implements HTTP Basic access control with two static roles.
package auth

import (
	"fmt"

	"github.com/warehall/stockroom/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// Role is a privilege level attached to an account.
type Role string

const (
	// RoleRead permits the query endpoints.
	RoleRead Role = "READ"
	// RoleCRUD permits create, update and delete.
	RoleCRUD Role = "CRUD"
)

type account struct {
	login        string
	passwordHash []byte
	roles        map[Role]struct{}
}

func (a *account) hasRole(role Role) bool {
	_, ok := a.roles[role]
	return ok
}

// Registry holds the static accounts. Passwords are bcrypt-hashed at
// construction and compared in constant time on every request.
type Registry struct {
	accounts map[string]*account
}

// NewRegistry builds the registry from configuration: the reader account
// holds READ, the admin account holds READ and CRUD.
func NewRegistry(cfg config.AuthConfig) (*Registry, error) {
	reader, err := newAccount(cfg.Reader, RoleRead)
	if err != nil {
		return nil, err
	}
	admin, err := newAccount(cfg.Admin, RoleRead, RoleCRUD)
	if err != nil {
		return nil, err
	}
	return &Registry{accounts: map[string]*account{
		reader.login: reader,
		admin.login:  admin,
	}}, nil
}

func newAccount(user config.AuthUser, roles ...Role) (*account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password for %q: %w", user.Login, err)
	}
	roleSet := make(map[Role]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}
	return &account{login: user.Login, passwordHash: hash, roles: roleSet}, nil
}

// authenticate returns the account matching the credentials, or nil.
func (r *Registry) authenticate(login, password string) *account {
	acc, ok := r.accounts[login]
	if !ok {
		return nil
	}
	if bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)) != nil {
		return nil
	}
	return acc
}
