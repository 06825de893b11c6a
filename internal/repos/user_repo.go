package repos

import (
	"context"

	"vendorhub/internal/domain"

	"github.com/jmoiron/sqlx"
)

const userCols = `user_id,name,email,phone,user_role,approved,signin_type,onboarding_step,file_url,COALESCE(created_at,'') AS created_at`

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, `SELECT `+userCols+` FROM users WHERE user_id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) CredentialByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	var c domain.Credential
	err := r.DB.GetContext(ctx, &c, `SELECT user_id,email,password_hash FROM credentials WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *UserRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM credentials WHERE LOWER(email)=LOWER(?)`, email)
	return n > 0, err
}

// CreateAccount writes the profile, credentials and vendor details in one transaction.
func (r *UserRepo) CreateAccount(ctx context.Context, u domain.User, hash string, vd domain.VendorDetails) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO users(user_id,name,email,phone,user_role,approved,signin_type,onboarding_step,file_url)
		VALUES(?,?,?,?,?,?,?,?,?)`,
		u.ID, u.Name, u.Email, u.Phone, u.Role, u.Approved, u.SigninType, u.OnboardingStep, u.FileURL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO credentials(user_id,email,password_hash) VALUES(?,?,?)`,
		u.ID, u.Email, hash); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO vendor_details(user_id,optional_1,optional_2) VALUES(?,?,?)`,
		u.ID, vd.Optional1, vd.Optional2); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *UserRepo) VendorDetails(ctx context.Context, userID string) (*domain.VendorDetails, error) {
	var vd domain.VendorDetails
	err := r.DB.GetContext(ctx, &vd, `SELECT user_id,optional_1,optional_2 FROM vendor_details WHERE user_id=?`, userID)
	if err != nil {
		return nil, err
	}
	return &vd, nil
}

func (r *UserRepo) ListVendors(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	err := r.DB.SelectContext(ctx, &out, `SELECT `+userCols+` FROM users WHERE user_role='vendor' ORDER BY approved DESC, email`)
	return out, err
}

// SetApproval returns the number of rows changed.
func (r *UserRepo) SetApproval(ctx context.Context, userID string, a domain.Approval) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET approved=? WHERE user_id=?`, a, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
