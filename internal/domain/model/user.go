package model

import (
	"time"
)

type Role string

const (
	RoleUnset   Role = ""
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

func (r Role) Valid() bool {
	return r == RoleTeacher || r == RoleStudent
}

// User is the identity value emitted to subscribers: the account data from
// the auth provider merged with the user's Settings record.
type User struct {
	ID                string  `json:"id"`
	Email             string  `json:"email"`
	Role              Role    `json:"role"`
	DisplayName       string  `json:"displayName,omitempty"`
	DisplayPictureURL string  `json:"displayPictureUrl"`
	DefaultSchoolName *string `json:"defaultSchoolName,omitempty"`
	SchoolLogo        *string `json:"schoolLogo,omitempty"`
}

// Settings is the per-user record kept in the local store.
type Settings struct {
	Role              Role      `json:"role"`
	DisplayName       *string   `json:"displayName,omitempty"`
	DefaultSchoolName *string   `json:"defaultSchoolName,omitempty"`
	SchoolLogo        *string   `json:"schoolLogo,omitempty"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Account is the auth provider's credential record.
type Account struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	HashedPassword    string    `json:"hashedPassword"`
	DisplayPictureURL string    `json:"displayPictureUrl"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
