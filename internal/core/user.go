package core

import (
	"errors"
	"strings"
)

// User is the profile handed over by the sign-in collaborator. Only the
// session is persisted here; credentials never are.
type User struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

var ErrInvalidUser = errors.New("user requires id, email and name")

func (u User) Validate() error {
	if strings.TrimSpace(u.ID) == "" || strings.TrimSpace(u.Email) == "" || strings.TrimSpace(u.Name) == "" {
		return ErrInvalidUser
	}
	return nil
}
