package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/xavierca1/buyer-leads/internal/entity"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type user struct {
	actor entity.Actor
	hash  []byte
}

// Directory is a fixed set of users loaded at startup.
type Directory struct {
	byEmail map[string]user
}

// ParseDirectory reads "id:email:password" entries separated by ";".
// Passwords are hashed with bcrypt on load and never kept in clear.
func ParseDirectory(entries string) (*Directory, error) {
	d := &Directory{byEmail: make(map[string]user)}
	for _, entry := range strings.Split(entries, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return nil, fmt.Errorf("malformed user entry %q", entry)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(parts[2]), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		email := strings.ToLower(parts[1])
		d.byEmail[email] = user{actor: entity.Actor{ID: parts[0], Email: email}, hash: hash}
	}
	if len(d.byEmail) == 0 {
		return nil, errors.New("no users configured")
	}
	return d, nil
}

func (d *Directory) Authenticate(email, password string) (entity.Actor, error) {
	u, ok := d.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return entity.Actor{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.hash, []byte(password)); err != nil {
		return entity.Actor{}, ErrInvalidCredentials
	}
	return u.actor, nil
}
