package services

import (
	"context"
	"database/sql"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"vendorhub/internal/domain"
	"vendorhub/internal/repos"
	"vendorhub/internal/storage"
	"vendorhub/internal/validate"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// refreshAfter is how stale last_seen must be before a request refreshes it.
const refreshAfter = time.Minute

// ObjectStore is the upload + public URL surface of the object storage.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, key string, r io.Reader, contentType string) error
	PublicURL(bucket, key string) string
}

// Upload is one file received from a multipart form.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

type SignupInput struct {
	Name      string `validate:"required,max=80" label:"Name"`
	Email     string `validate:"required,email,max=254" label:"Email"`
	Phone     string `validate:"required,phone" label:"Phone"`
	Password  string `validate:"required,strongpw" label:"Password"`
	Terms     bool
	Optional1 string `validate:"max=200" label:"Business name"`
	Optional2 string `validate:"max=200" label:"GST / tax id"`
}

type AuthService struct {
	Users    *repos.UserRepo
	Sessions *repos.SessionRepo
	Docs     ObjectStore
	Hub      *SessionHub
	TTL      time.Duration
	Now      func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) publish(ev SessionEvent) {
	if s.Hub != nil {
		s.Hub.Publish(ev)
	}
}

func (s *AuthService) Login(ctx context.Context, sid, email, password string) (*domain.User, error) {
	cred, err := s.Users.CredentialByEmail(ctx, email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	u, err := s.Users.ByID(ctx, cred.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "load profile")
	}
	if err := s.bind(ctx, sid, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) bind(ctx context.Context, sid string, u *domain.User) error {
	now := s.now().Unix()
	if err := s.Sessions.Bind(ctx, sid, u.ID, now); err != nil {
		return errors.Wrap(err, "bind session")
	}
	s.publish(SessionEvent{Kind: SignedIn, SID: sid, Session: &domain.Session{ID: sid, UserID: u.ID, Email: u.Email, LastSeen: now}})
	return nil
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	if err := s.Sessions.Unbind(ctx, sid); err != nil {
		return errors.Wrap(err, "unbind session")
	}
	s.publish(SessionEvent{Kind: SignedOut, SID: sid})
	return nil
}

// CurrentSession resolves sid to its bound session. Idle sessions past TTL are
// signed out.
func (s *AuthService) CurrentSession(ctx context.Context, sid string) (*domain.Session, error) {
	if sid == "" {
		return nil, ErrNoSession
	}
	sess, err := s.Sessions.Get(ctx, sid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, errors.Wrap(err, "load session")
	}
	now := s.now()
	idle := now.Sub(time.Unix(sess.LastSeen, 0))
	if s.TTL > 0 && idle > s.TTL {
		if err := s.Logout(ctx, sid); err != nil {
			return nil, err
		}
		return nil, ErrNoSession
	}
	if idle > refreshAfter {
		if err := s.Sessions.Touch(ctx, sid, now.Unix()); err != nil {
			return nil, errors.Wrap(err, "touch session")
		}
		sess.LastSeen = now.Unix()
		s.publish(SessionEvent{Kind: Refreshed, SID: sid, Session: sess})
	}
	return sess, nil
}

// SignUp creates a vendor account awaiting approval and signs it in on sid.
// Terms are checked before the document, and both before field validation.
func (s *AuthService) SignUp(ctx context.Context, sid string, in SignupInput, doc *Upload) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if !in.Terms {
		return nil, formErr("terms", "Please accept the terms and conditions.")
	}
	if doc == nil || doc.Open == nil {
		return nil, formErr("document", "Please upload your business document.")
	}
	if msg := validate.Struct(in); msg != "" {
		return nil, formErr("", msg)
	}
	taken, err := s.Users.EmailTaken(ctx, in.Email)
	if err != nil {
		return nil, errors.Wrap(err, "check email")
	}
	if taken {
		return nil, ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	u := domain.User{
		ID:         uuid.NewString(),
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Role:       domain.RoleVendor,
		Approved:   domain.ApprovalWaiting,
		SigninType: domain.SigninEmail,
	}
	u.FileURL, err = s.uploadDocument(ctx, u.ID, doc)
	if err != nil {
		return nil, err
	}
	vd := domain.VendorDetails{UserID: u.ID, Optional1: nullable(in.Optional1), Optional2: nullable(in.Optional2)}
	if err := s.Users.CreateAccount(ctx, u, string(hash), vd); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return nil, ErrEmailTaken
		}
		return nil, errors.Wrap(err, "create account")
	}
	if err := s.bind(ctx, sid, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *AuthService) uploadDocument(ctx context.Context, userID string, doc *Upload) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(doc.Name)), ".")
	if ext == "" {
		ext = "bin"
	}
	key := userID + "/" + strconv.FormatInt(s.now().UnixMilli(), 10) + "." + ext
	rc, err := doc.Open()
	if err != nil {
		return "", errors.Wrapf(ErrUploadFailed, "open document: %v", err)
	}
	defer rc.Close()
	if err := s.Docs.Upload(ctx, storage.BucketVendorDocuments, key, rc, doc.ContentType); err != nil {
		return "", errors.Wrapf(ErrUploadFailed, "document: %v", err)
	}
	return s.Docs.PublicURL(storage.BucketVendorDocuments, key), nil
}

func nullable(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

// LandingFor is where a freshly signed-in user goes.
func LandingFor(u *domain.User) string {
	switch {
	case u == nil:
		return "/login"
	case u.Role == domain.RoleAdmin:
		return "/admin"
	case u.Approved == domain.ApprovalAccepted:
		return "/dashboard"
	default:
		return "/waiting-approval"
	}
}
