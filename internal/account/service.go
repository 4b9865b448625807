package account

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"resumehub/internal/apperr"
	"resumehub/internal/auth"
	"resumehub/internal/mailer"
	"resumehub/internal/metrics"
	"resumehub/internal/model"
	"resumehub/internal/store"
)

// Store is the credential store the service needs.
type Store interface {
	Create(ctx context.Context, a *model.Account) error
	GetByID(ctx context.Context, id string) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	Update(ctx context.Context, id string, u model.AccountUpdate) (*model.Account, error)
	UpdatePassword(ctx context.Context, id, hash string) (bool, error)
	ListByRole(ctx context.Context, role model.Role) ([]model.Account, error)
	CountByRole(ctx context.Context, role model.Role) (int64, error)
}

// Options tunes token lifetimes and reset links.
type Options struct {
	TokenTTL  time.Duration
	ResetTTL  time.Duration
	ClientURL string
}

// Service handles registration, login, password reset and profiles.
type Service struct {
	store  Store
	signer *auth.Signer
	mail   mailer.Mailer
	opts   Options
	logger *slog.Logger
}

// NewService creates a service. Zero TTLs fall back to 24h and 15m.
func NewService(st Store, signer *auth.Signer, mail mailer.Mailer, opts Options, logger *slog.Logger) *Service {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.ResetTTL <= 0 {
		opts.ResetTTL = 15 * time.Minute
	}
	opts.ClientURL = strings.TrimRight(opts.ClientURL, "/")
	return &Service{store: st, signer: signer, mail: mail, opts: opts, logger: logger.With("component", "account")}
}

// RegisterInput is a new account request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
	College  string
	Company  string
	Phone    string
	Address  string
	State    string
	District string
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token     string               `json:"token"`
	ExpiresAt time.Time            `json:"expiresAt"`
	User      model.AccountSummary `json:"user"`
}

// Register validates and stores a new account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (model.Account, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.College = strings.TrimSpace(in.College)
	in.Company = strings.TrimSpace(in.Company)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return model.Account{}, apperr.Validation("Name, email and password are required")
	}
	if !in.Role.Valid() {
		return model.Account{}, apperr.Validation("Role must be College or HR")
	}

	acc := model.Account{
		Name:     in.Name,
		Role:     in.Role,
		Email:    in.Email,
		Phone:    strings.TrimSpace(in.Phone),
		Address:  strings.TrimSpace(in.Address),
		State:    strings.TrimSpace(in.State),
		District: strings.TrimSpace(in.District),
	}
	switch in.Role {
	case model.RoleCollege:
		if in.College == "" {
			return model.Account{}, apperr.Validation("College name is required")
		}
		acc.College = in.College
	case model.RoleHR:
		if in.Company == "" {
			return model.Account{}, apperr.Validation("Company name is required")
		}
		if !emailMatchesCompany(in.Email, in.Company) {
			return model.Account{}, apperr.Validation("Email domain must match your company name")
		}
		acc.Company = in.Company
	}

	existing, err := s.store.GetByEmail(ctx, in.Email)
	if err != nil {
		return model.Account{}, apperr.Internal("Server error", fmt.Errorf("lookup email: %w", err))
	}
	if existing != nil {
		return model.Account{}, apperr.Conflict("User already exists")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return model.Account{}, apperr.Internal("Server error", err)
	}
	acc.PasswordHash = hash
	if err := s.store.Create(ctx, &acc); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return model.Account{}, apperr.Conflict("User already exists")
		}
		return model.Account{}, apperr.Internal("Server error", fmt.Errorf("create account: %w", err))
	}
	s.logger.Info("account registered", "id", acc.ID, "role", acc.Role)
	return acc, nil
}

// Login checks the role before the password so a mismatch always names the
// stored role.
func (s *Service) Login(ctx context.Context, email, password string, role model.Role) (LoginResult, error) {
	acc, err := s.store.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return LoginResult{}, apperr.Internal("Server error", fmt.Errorf("lookup email: %w", err))
	}
	if acc == nil {
		metrics.Logins.WithLabelValues("unknown_email").Inc()
		return LoginResult{}, apperr.NotFound("User not found")
	}
	if acc.Role != role {
		metrics.Logins.WithLabelValues("wrong_role").Inc()
		return LoginResult{}, apperr.Forbidden(fmt.Sprintf("This account is registered as %s. Please login as %s.", acc.Role, acc.Role))
	}
	ok, err := auth.CheckPassword(acc.PasswordHash, password)
	if err != nil {
		return LoginResult{}, apperr.Internal("Server error", err)
	}
	if !ok {
		metrics.Logins.WithLabelValues("bad_password").Inc()
		return LoginResult{}, apperr.Auth("Invalid credentials")
	}

	token, exp, err := s.signer.IssueAccess(acc.ID, acc.Role, s.opts.TokenTTL)
	if err != nil {
		return LoginResult{}, apperr.Internal("Server error", fmt.Errorf("sign token: %w", err))
	}
	metrics.Logins.WithLabelValues("ok").Inc()
	return LoginResult{Token: token, ExpiresAt: exp, User: acc.Summary()}, nil
}

// RequestPasswordReset mails a short-lived reset link. Nothing is stored.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	acc, err := s.store.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return apperr.Internal("Server error", fmt.Errorf("lookup email: %w", err))
	}
	if acc == nil {
		return apperr.NotFound("User not found")
	}
	token, _, err := s.signer.IssueReset(acc.ID, acc.PasswordHash, s.opts.ResetTTL)
	if err != nil {
		return apperr.Internal("Server error", fmt.Errorf("sign reset token: %w", err))
	}
	link := s.opts.ClientURL + "/reset-password/" + token
	body := fmt.Sprintf(`<p>Hello %s,</p>
<p>Click the link below to reset your password. It expires in %d minutes.</p>
<p><a href="%s">%s</a></p>`, html.EscapeString(acc.Name), int(s.opts.ResetTTL.Minutes()), link, link)
	if err := s.mail.Send(ctx, acc.Email, "Password Reset", body); err != nil {
		return apperr.Internal("Failed to send reset email", err)
	}
	s.logger.Info("password reset requested", "id", acc.ID)
	return nil
}

// ResetPassword consumes a reset token. A token stops working once the
// password it was issued against has changed.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return apperr.Validation("Password is required")
	}
	claims, err := s.signer.ParseReset(token)
	if err != nil {
		return apperr.Auth("Invalid or expired token")
	}
	acc, err := s.store.GetByID(ctx, claims.AccountID)
	if err != nil {
		return apperr.Internal("Server error", fmt.Errorf("load account: %w", err))
	}
	if acc == nil || auth.Fingerprint(acc.PasswordHash) != claims.Fingerprint {
		return apperr.Auth("Invalid or expired token")
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal("Server error", err)
	}
	ok, err := s.store.UpdatePassword(ctx, acc.ID, hash)
	if err != nil {
		return apperr.Internal("Server error", fmt.Errorf("update password: %w", err))
	}
	if !ok {
		return apperr.Auth("Invalid or expired token")
	}
	s.logger.Info("password reset", "id", acc.ID)
	return nil
}

// GetProfile returns an account by id.
func (s *Service) GetProfile(ctx context.Context, id string) (model.Account, error) {
	acc, err := s.store.GetByID(ctx, id)
	if err != nil {
		return model.Account{}, apperr.Internal("Server error", fmt.Errorf("load account: %w", err))
	}
	if acc == nil {
		return model.Account{}, apperr.NotFound("User not found")
	}
	return *acc, nil
}

// UpdateProfile applies a partial update. The affiliation field that does not
// belong to the account's role is ignored.
func (s *Service) UpdateProfile(ctx context.Context, id string, u model.AccountUpdate) (model.Account, error) {
	acc, err := s.GetProfile(ctx, id)
	if err != nil {
		return model.Account{}, err
	}
	return s.update(ctx, acc, u)
}

func (s *Service) update(ctx context.Context, acc model.Account, u model.AccountUpdate) (model.Account, error) {
	switch acc.Role {
	case model.RoleCollege:
		u.Company = nil
	case model.RoleHR:
		u.College = nil
	}
	if u.Name != nil {
		v := strings.TrimSpace(*u.Name)
		if v == "" {
			return model.Account{}, apperr.Validation("Name cannot be empty")
		}
		u.Name = &v
	}
	if u.Email != nil {
		v := normalizeEmail(*u.Email)
		if !strings.Contains(v, "@") {
			return model.Account{}, apperr.Validation("Invalid email")
		}
		u.Email = &v
	}
	if acc.Role == model.RoleHR && (u.Email != nil || u.Company != nil) {
		email, company := acc.Email, acc.Company
		if u.Email != nil {
			email = *u.Email
		}
		if u.Company != nil {
			company = strings.TrimSpace(*u.Company)
			u.Company = &company
		}
		if company == "" {
			return model.Account{}, apperr.Validation("Company name is required")
		}
		if !emailMatchesCompany(email, company) {
			return model.Account{}, apperr.Validation("Email domain must match your company name")
		}
	}

	updated, err := s.store.Update(ctx, acc.ID, u)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return model.Account{}, apperr.Conflict("Email already in use")
		}
		return model.Account{}, apperr.Internal("Server error", fmt.Errorf("update account: %w", err))
	}
	if updated == nil {
		return model.Account{}, apperr.NotFound("User not found")
	}
	return *updated, nil
}

// ListHR returns every HR account. An empty phone is rendered as "N/A".
func (s *Service) ListHR(ctx context.Context) ([]model.HRProfile, error) {
	accs, err := s.store.ListByRole(ctx, model.RoleHR)
	if err != nil {
		return nil, apperr.Internal("Server error", fmt.Errorf("list hr: %w", err))
	}
	res := make([]model.HRProfile, 0, len(accs))
	for _, a := range accs {
		p := hrProfile(a)
		if p.Phone == "" {
			p.Phone = "N/A"
		}
		res = append(res, p)
	}
	return res, nil
}

// ListColleges returns every College account.
func (s *Service) ListColleges(ctx context.Context) ([]model.CollegeProfile, error) {
	accs, err := s.store.ListByRole(ctx, model.RoleCollege)
	if err != nil {
		return nil, apperr.Internal("Server error", fmt.Errorf("list colleges: %w", err))
	}
	res := make([]model.CollegeProfile, 0, len(accs))
	for _, a := range accs {
		res = append(res, model.CollegeProfile{
			ID: a.ID, Name: a.Name, Email: a.Email, Phone: a.Phone, College: a.College,
			Address: a.Address, State: a.State, District: a.District,
		})
	}
	return res, nil
}

// CountByRole is used by the stats service.
func (s *Service) CountByRole(ctx context.Context, role model.Role) (int64, error) {
	return s.store.CountByRole(ctx, role)
}

// HRSettingsUpdate carries the editable settings fields.
type HRSettingsUpdate struct {
	Name    *string
	Phone   *string
	Company *string
}

// GetHRSettings looks up an HR account by email.
func (s *Service) GetHRSettings(ctx context.Context, email string) (model.HRSettings, error) {
	acc, err := s.hrByEmail(ctx, email)
	if err != nil {
		return model.HRSettings{}, err
	}
	return hrSettings(acc), nil
}

// UpdateHRSettings updates name, phone and company of the HR account with email.
func (s *Service) UpdateHRSettings(ctx context.Context, email string, u HRSettingsUpdate) (model.HRSettings, error) {
	acc, err := s.hrByEmail(ctx, email)
	if err != nil {
		return model.HRSettings{}, err
	}
	updated, err := s.update(ctx, acc, model.AccountUpdate{Name: u.Name, Phone: u.Phone, Company: u.Company})
	if err != nil {
		return model.HRSettings{}, err
	}
	return hrSettings(updated), nil
}

// GetHRProfile returns the HR projection of account id.
func (s *Service) GetHRProfile(ctx context.Context, id string) (model.HRProfile, error) {
	acc, err := s.hrByID(ctx, id)
	if err != nil {
		return model.HRProfile{}, err
	}
	return hrProfile(acc), nil
}

// UpdateHRProfile applies a partial update to an HR account.
func (s *Service) UpdateHRProfile(ctx context.Context, id string, u model.AccountUpdate) (model.HRProfile, error) {
	acc, err := s.hrByID(ctx, id)
	if err != nil {
		return model.HRProfile{}, err
	}
	updated, err := s.update(ctx, acc, u)
	if err != nil {
		return model.HRProfile{}, err
	}
	return hrProfile(updated), nil
}

func (s *Service) hrByEmail(ctx context.Context, email string) (model.Account, error) {
	acc, err := s.store.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return model.Account{}, apperr.Internal("Server error", fmt.Errorf("lookup email: %w", err))
	}
	if acc == nil || acc.Role != model.RoleHR {
		return model.Account{}, apperr.NotFound("HR not found")
	}
	return *acc, nil
}

func (s *Service) hrByID(ctx context.Context, id string) (model.Account, error) {
	acc, err := s.store.GetByID(ctx, id)
	if err != nil {
		return model.Account{}, apperr.Internal("Server error", fmt.Errorf("load account: %w", err))
	}
	if acc == nil || acc.Role != model.RoleHR {
		return model.Account{}, apperr.NotFound("HR not found")
	}
	return *acc, nil
}

func hrProfile(a model.Account) model.HRProfile {
	return model.HRProfile{
		ID: a.ID, Name: a.Name, Email: a.Email, Phone: a.Phone, Company: a.Company,
		Address: a.Address, State: a.State, District: a.District,
	}
}

func hrSettings(a model.Account) model.HRSettings {
	return model.HRSettings{Name: a.Name, Email: a.Email, Phone: a.Phone, Company: a.Company}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
