package model

import (
	"encoding/json"
	"strings"
)

// Role names as issued by the backend.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the two roles the client can route.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Identity is the authenticated user or admin held for the session
// duration.  It is created from a login/register response and destroyed on
// logout.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// UnmarshalJSON accepts both "id" and the backend's "_id" key and normalises
// the role to lower case.
func (i *Identity) UnmarshalJSON(b []byte) error {
	type alias Identity
	aux := struct {
		*alias
		MongoID string `json:"_id"`
	}{alias: (*alias)(i)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if i.ID == "" {
		i.ID = aux.MongoID
	}
	i.Role = Role(strings.ToLower(strings.TrimSpace(string(i.Role))))
	return nil
}

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Registration is the register form.  AdminCode is only meaningful (and then
// required) when Role is admin; the backend decides whether it is correct.
type Registration struct {
	Name      string   `json:"name" validate:"required"`
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required,min=6"`
	Role      Role     `json:"role" validate:"required,oneof=admin user"`
	AdminCode string   `json:"adminCode,omitempty" validate:"required_if=Role admin"`
	Age       int      `json:"age,omitempty" validate:"omitempty,gte=0,lte=130"`
	Gender    string   `json:"gender,omitempty"`
	Interests []string `json:"interests,omitempty"`
	Location  string   `json:"location,omitempty"`
}

// AuthResponse is the body of a successful login or register call.
type AuthResponse struct {
	Token string   `json:"token"`
	User  Identity `json:"user"`
}
