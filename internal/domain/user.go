package domain

import "database/sql"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleVendor Role = "vendor"
	RoleUser   Role = "user"
)

// Approval is the admin-controlled vendor review state.
type Approval string

const (
	ApprovalWaiting  Approval = "Waiting"
	ApprovalAccepted Approval = "Accepted"
	ApprovalRejected Approval = "Rejected"
)

func ParseApproval(s string) (Approval, bool) {
	switch Approval(s) {
	case ApprovalWaiting, ApprovalAccepted, ApprovalRejected:
		return Approval(s), true
	}
	return "", false
}

type SigninType string

const (
	SigninGoogle SigninType = "google"
	SigninEmail  SigninType = "email"
)

// Onboarding steps; a NULL step means onboarding never started.
const (
	OnboardingUserCreation = "userCreation"
	OnboardingForm1        = "Form1"
	OnboardingForm2        = "Form2"
	OnboardingForm3        = "Form3"
	OnboardingHome         = "Home"
)

// User is the profile row keyed by the auth identity.
type User struct {
	ID             string         `db:"user_id"`
	Name           string         `db:"name"`
	Email          string         `db:"email"`
	Phone          string         `db:"phone"`
	Role           Role           `db:"user_role"`
	Approved       Approval       `db:"approved"`
	SigninType     SigninType     `db:"signin_type"`
	OnboardingStep sql.NullString `db:"onboarding_step"`
	FileURL        string         `db:"file_url"`
	CreatedAt      string         `db:"created_at"`
}

type Credential struct {
	UserID string `db:"user_id"`
	Email  string `db:"email"`
	Hash   string `db:"password_hash"`
}

type VendorDetails struct {
	UserID    string         `db:"user_id"`
	Optional1 sql.NullString `db:"optional_1"`
	Optional2 sql.NullString `db:"optional_2"`
}

// Session is a bound browser session (the `sid` cookie value).
type Session struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	Email     string `db:"email"`
	CreatedAt string `db:"created_at"`
	LastSeen  int64  `db:"last_seen"`
}
