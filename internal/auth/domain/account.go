package domain

import (
	"strings"
	"time"
)

// EntityType identifies the kind of principal a token was minted for.
type EntityType string

const (
	EntityAccount     EntityType = "ACCOUNT"
	EntityApplication EntityType = "APPLICATION"
)

// Permission is a grant in "group:name" form.
type Permission struct {
	Group string
	Name  string
}

func (p Permission) String() string {
	return p.Group + ":" + p.Name
}

// ParsePermission splits "group:name". Both halves must be non-empty.
func ParsePermission(s string) (Permission, bool) {
	group, name, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || group == "" || name == "" {
		return Permission{}, false
	}
	return Permission{Group: group, Name: name}, true
}

// Contact is an email address or phone number with its verification state.
type Contact struct {
	Value    string
	Verified bool
}

// Account is the principal behind user credentials.
type Account struct {
	ID          string
	Domain      string
	ExternalID  string
	Active      bool
	Roles       []string
	Permissions []Permission
	Email       *Contact
	Phone       *Contact
	CreatedAt   time.Time
}

// App is a machine principal, owned by an account, that receives API keys.
type App struct {
	ID              string
	Domain          string
	ExternalID      string
	ParentAccountID string
	Active          bool
	Roles           []string
	Permissions     []Permission
	CreatedAt       time.Time
}
