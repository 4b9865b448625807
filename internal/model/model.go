package model

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleCollege Role = "College"
	RoleHR      Role = "HR"
)

// ParseRole accepts any casing of a known role and returns the canonical value.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "college":
		return RoleCollege, nil
	case "hr":
		return RoleHR, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) Valid() bool { return r == RoleCollege || r == RoleHR }

// UploaderKind records who pushed a resume into the system.
type UploaderKind string

const (
	UploaderAdmin   UploaderKind = "admin"
	UploaderCollege UploaderKind = "college"
)

// ParseUploaderKind defaults to admin when empty.
func ParseUploaderKind(s string) (UploaderKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "admin":
		return UploaderAdmin, nil
	case "college":
		return UploaderCollege, nil
	}
	return "", fmt.Errorf("unknown uploader %q", s)
}

// Account is a registered College or HR actor.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone"`
	College      string    `json:"college,omitempty"` // role College only
	Company      string    `json:"company,omitempty"` // role HR only
	Address      string    `json:"address"`
	State        string    `json:"state"`
	District     string    `json:"district"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AccountSummary is returned alongside a login token.
type AccountSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	Name  string `json:"name"`
}

func (a Account) Summary() AccountSummary {
	return AccountSummary{ID: a.ID, Email: a.Email, Role: a.Role, Name: a.Name}
}

// AccountUpdate carries a partial profile update; nil fields are left alone.
type AccountUpdate struct {
	Name     *string
	Email    *string
	Phone    *string
	College  *string
	Company  *string
	Address  *string
	State    *string
	District *string
}

// HRProfile is the listing projection of an HR account.
type HRProfile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
	Address  string `json:"address"`
	State    string `json:"state"`
	District string `json:"district"`
}

// CollegeProfile is the listing projection of a College account.
type CollegeProfile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	College  string `json:"college"`
	Address  string `json:"address"`
	State    string `json:"state"`
	District string `json:"district"`
}

// HRSettings is what the settings page reads and writes.
type HRSettings struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
}

// Selection is one HR actor's shortlist decision on a resume.
type Selection struct {
	HRID     string `json:"hrId"`
	Selected bool   `json:"selected"`
}

// Resume is one uploaded document with its metadata and HR state.
type Resume struct {
	ID          string       `json:"id"`
	FileName    string       `json:"fileName"`
	StoredName  string       `json:"storedName"`
	FileURL     string       `json:"fileUrl"`
	UploadedBy  UploaderKind `json:"uploadedBy"`
	CollegeID   *string      `json:"collegeId,omitempty"`
	CollegeName *string      `json:"collegeName,omitempty"`
	Department  string       `json:"department"`
	State       string       `json:"state"`
	District    string       `json:"district"`
	Content     string       `json:"content"`
	Viewed      bool         `json:"viewed"`
	ViewedBy    []string     `json:"viewedBy"`
	SelectedBy  []Selection  `json:"selectedBy"`
	UploadedAt  time.Time    `json:"uploadedAt"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// IsSelectedBy reports whether hrID holds an active selection on r.
func (r Resume) IsSelectedBy(hrID string) bool {
	for _, s := range r.SelectedBy {
		if s.HRID == hrID && s.Selected {
			return true
		}
	}
	return false
}

// AnnotatedResume is a resume as seen by a particular HR user.
type AnnotatedResume struct {
	Resume
	SelectedByHR bool `json:"selectedByHR"`
}

// Stats are the admin dashboard counters.
type Stats struct {
	AdminResumeCount   int64 `json:"adminResumeCount"`
	CollegeResumeCount int64 `json:"collegeResumeCount"`
	HRCount            int64 `json:"hrCount"`
	CollegeCount       int64 `json:"collegeCount"`
}
