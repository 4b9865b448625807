package account

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumehub/internal/apperr"
	"resumehub/internal/auth"
	"resumehub/internal/model"
	"resumehub/internal/store/memstore"
)

type sentMail struct {
	to, subject, html string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, subject, html})
	return nil
}

var resetLink = regexp.MustCompile(`http://client\.test/reset-password/([^"<]+)`)

func newTestService(t *testing.T) (*Service, *fakeMailer) {
	t.Helper()
	mail := &fakeMailer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(memstore.NewAccounts(), auth.NewSigner("resumehub", "test-secret"), mail,
		Options{ClientURL: "http://client.test/"}, logger)
	return svc, mail
}

func registerHR(t *testing.T, svc *Service, email string) model.Account {
	t.Helper()
	acc, err := svc.Register(context.Background(), RegisterInput{
		Name: "Jane", Email: email, Password: "pw-123456", Role: model.RoleHR, Company: "Acme Corp",
	})
	require.NoError(t, err)
	return acc
}

func TestCompanyKeywordCheck(t *testing.T) {
	cases := []struct {
		email, company string
		want           bool
	}{
		{"jane@acme.io", "Acme Corp", true},
		{"jane@gmail.com", "Acme Corp", false},
		{"acme.jane@gmail.com", "Acme Corp", true},
		{"jane@mail.acme-corp.com", "Acme, Inc.", true},
		{"jane@ab.com", "AB Co", false},
		{"jane@tata.com", "T.A.T.A. Motors", true},
		{"not-an-email", "Acme", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, emailMatchesCompany(tc.email, tc.company), "%s / %s", tc.email, tc.company)
	}
	assert.Equal(t, []string{"acme", "corp"}, companyKeywords("  Acme   Corp! "))
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	acc := registerHR(t, svc, "Jane@Acme.io")
	assert.Equal(t, "jane@acme.io", acc.Email)
	assert.Equal(t, "Acme Corp", acc.Company)
	assert.Empty(t, acc.College)
	assert.NotEqual(t, "pw-123456", acc.PasswordHash)

	_, err := svc.Register(ctx, RegisterInput{Name: "J", Email: "jane@gmail.com", Password: "x", Role: model.RoleHR, Company: "Acme Corp"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Register(ctx, RegisterInput{Name: "J", Email: "jane@acme.io", Password: "x", Role: model.RoleHR, Company: "Acme Corp"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = svc.Register(ctx, RegisterInput{Name: "C", Email: "c@uni.edu", Password: "x", Role: model.RoleCollege})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	col, err := svc.Register(ctx, RegisterInput{Name: "C", Email: "c@uni.edu", Password: "x", Role: model.RoleCollege, College: "State Uni", Company: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "State Uni", col.College)
	assert.Empty(t, col.Company)

	_, err = svc.Register(ctx, RegisterInput{Name: "X", Email: "x@y.z", Password: "x", Role: "Admin"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	acc := registerHR(t, svc, "jane@acme.io")

	_, err := svc.Login(ctx, "nobody@acme.io", "pw-123456", model.RoleHR)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = svc.Login(ctx, "jane@acme.io", "wrong", model.RoleCollege)
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	assert.Equal(t, "This account is registered as HR. Please login as HR.", apperr.Message(err))

	_, err = svc.Login(ctx, "jane@acme.io", "wrong", model.RoleHR)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))

	res, err := svc.Login(ctx, " JANE@acme.io ", "pw-123456", model.RoleHR)
	require.NoError(t, err)
	assert.Equal(t, acc.Summary(), res.User)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), res.ExpiresAt, time.Minute)

	claims, err := svc.signer.ParseAccess(res.Token)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, claims.AccountID)
	assert.Equal(t, model.RoleHR, claims.Role)
}

func TestPasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	svc, mail := newTestService(t)
	registerHR(t, svc, "jane@acme.io")

	err := svc.RequestPasswordReset(ctx, "ghost@acme.io")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	require.NoError(t, svc.RequestPasswordReset(ctx, "jane@acme.io"))
	require.Len(t, mail.sent, 1)
	assert.Equal(t, "jane@acme.io", mail.sent[0].to)
	m := resetLink.FindStringSubmatch(mail.sent[0].html)
	require.Len(t, m, 2)
	token := m[1]

	err = svc.ResetPassword(ctx, token, "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	err = svc.ResetPassword(ctx, "garbage", "new-pass")
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))

	require.NoError(t, svc.ResetPassword(ctx, token, "new-pass"))
	_, err = svc.Login(ctx, "jane@acme.io", "new-pass", model.RoleHR)
	require.NoError(t, err)

	// The password changed, so the same token no longer verifies.
	err = svc.ResetPassword(ctx, token, "another")
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
}

func TestRequestPasswordResetMailFailure(t *testing.T) {
	svc, mail := newTestService(t)
	registerHR(t, svc, "jane@acme.io")
	mail.err = assert.AnError

	err := svc.RequestPasswordReset(context.Background(), "jane@acme.io")
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Equal(t, "Failed to send reset email", apperr.Message(err))
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	hr := registerHR(t, svc, "jane@acme.io")
	registerHR(t, svc, "john@acme.io")

	phone, college := "555-1234", "Nope"
	got, err := svc.UpdateProfile(ctx, hr.ID, model.AccountUpdate{Phone: &phone, College: &college})
	require.NoError(t, err)
	assert.Equal(t, "555-1234", got.Phone)
	assert.Empty(t, got.College)
	assert.Equal(t, hr.PasswordHash, got.PasswordHash)

	taken := "JOHN@acme.io"
	_, err = svc.UpdateProfile(ctx, hr.ID, model.AccountUpdate{Email: &taken})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	gmail := "jane@gmail.com"
	_, err = svc.UpdateProfile(ctx, hr.ID, model.AccountUpdate{Email: &gmail})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.UpdateProfile(ctx, "missing", model.AccountUpdate{Phone: &phone})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestListingsAndSettings(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	hr := registerHR(t, svc, "jane@acme.io")
	_, err := svc.Register(ctx, RegisterInput{Name: "Uni", Email: "c@uni.edu", Password: "x", Role: model.RoleCollege, College: "Uni", Phone: "1"})
	require.NoError(t, err)

	hrs, err := svc.ListHR(ctx)
	require.NoError(t, err)
	require.Len(t, hrs, 1)
	assert.Equal(t, "N/A", hrs[0].Phone)

	cols, err := svc.ListColleges(ctx)
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, "1", cols[0].Phone)

	settings, err := svc.GetHRSettings(ctx, "JANE@acme.io")
	require.NoError(t, err)
	assert.Equal(t, model.HRSettings{Name: "Jane", Email: "jane@acme.io", Company: "Acme Corp"}, settings)

	name := "Jane Doe"
	settings, err = svc.UpdateHRSettings(ctx, "jane@acme.io", HRSettingsUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", settings.Name)

	_, err = svc.GetHRSettings(ctx, "c@uni.edu")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	prof, err := svc.GetHRProfile(ctx, hr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", prof.Name)

	n, err := svc.CountByRole(ctx, model.RoleHR)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
