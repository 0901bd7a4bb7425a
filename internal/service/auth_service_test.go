package service_test

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/avdeev/events-manager/internal/domain"
	"github.com/avdeev/events-manager/internal/repository/postgres"
	"github.com/avdeev/events-manager/internal/service"
	"github.com/avdeev/events-manager/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T, testDB *testutil.TestDB) (*service.AuthService, *testutil.RecordingMailer) {
	t.Helper()
	repos := postgres.NewRepositories(testDB.DB)
	mailer := testutil.NewRecordingMailer()
	logger := slog.New(slog.DiscardHandler)
	return service.NewAuthService(repos.User, repos.LoginHistory, mailer, testutil.TestConfig(), logger), mailer
}

func TestAuthService_Register(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	authService, _ := newAuthService(t, testDB)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   service.RegisterInput
		setup   func()
		wantErr error
	}{
		{
			name: "successful registration",
			input: service.RegisterInput{
				Name:     "Alice",
				Email:    "alice@example.com",
				Password: "secret1",
			},
		},
		{
			name: "duplicate email",
			input: service.RegisterInput{
				Name:     "Alice Again",
				Email:    "taken@example.com",
				Password: "secret1",
			},
			setup: func() {
				testutil.NewUserBuilder().
					WithEmail("taken@example.com").
					Build(t, testDB.DB)
			},
			wantErr: domain.ErrEmailExists,
		},
		{
			name: "email stays taken after soft delete",
			input: service.RegisterInput{
				Name:     "Newcomer",
				Email:    "gone@example.com",
				Password: "secret1",
			},
			setup: func() {
				testutil.NewUserBuilder().
					WithEmail("gone@example.com").
					WithDeleted().
					Build(t, testDB.DB)
			},
			wantErr: domain.ErrEmailExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testDB.Truncate(t)

			if tt.setup != nil {
				tt.setup()
			}

			result, err := authService.Register(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.input.Name, result.User.Name)
			assert.Equal(t, tt.input.Email, result.User.Email)
			assert.NotEmpty(t, result.Token)
			assert.False(t, result.NewDeviceDetected)

			// Plaintext must never be persisted.
			var stored domain.User
			require.NoError(t, testDB.DB.First(&stored, "email = ?", tt.input.Email).Error)
			assert.NotEqual(t, tt.input.Password, stored.PasswordHash)
			assert.True(t, stored.ComparePassword(tt.input.Password))
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	authService, _ := newAuthService(t, testDB)
	ctx := context.Background()

	_, _ = testutil.NewUserBuilder().
		WithEmail("login@example.com").
		WithPassword("correctpassword").
		Build(t, testDB.DB)
	testutil.NewUserBuilder().
		WithEmail("deleted@example.com").
		WithPassword("correctpassword").
		WithDeleted().
		Build(t, testDB.DB)

	tests := []struct {
		name    string
		input   service.LoginInput
		wantErr error
	}{
		{
			name: "successful login",
			input: service.LoginInput{
				Email:     "login@example.com",
				Password:  "correctpassword",
				IPAddress: "10.0.0.1",
				UserAgent: "test-agent",
			},
		},
		{
			name: "wrong password",
			input: service.LoginInput{
				Email:    "login@example.com",
				Password: "wrongpassword",
			},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name: "unknown email",
			input: service.LoginInput{
				Email:    "nobody@example.com",
				Password: "correctpassword",
			},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name: "soft-deleted account",
			input: service.LoginInput{
				Email:    "deleted@example.com",
				Password: "correctpassword",
			},
			wantErr: domain.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := authService.Login(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, result.Token)

			claims, err := authService.ValidateToken(result.Token)
			require.NoError(t, err)
			assert.Equal(t, result.User.ID.String(), claims["sub"])
			assert.Equal(t, "login@example.com", claims["email"])
		})
	}
}

func TestAuthService_Login_RecordsHistory(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	authService, _ := newAuthService(t, testDB)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, testDB.DB)

	_, err := authService.Login(ctx, service.LoginInput{
		Email:     user.Email,
		Password:  password,
		IPAddress: "10.0.0.1",
		UserAgent: "test-agent",
	})
	require.NoError(t, err)

	var records []domain.LoginHistory
	require.NoError(t, testDB.DB.Find(&records, "user_id = ?", user.ID).Error)
	require.Len(t, records, 1)
	assert.Equal(t, "10.0.0.1", records[0].IPAddress)
	assert.Equal(t, "test-agent", records[0].UserAgent)
}

func TestAuthService_Login_EmptyClientUsesSentinel(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	authService, _ := newAuthService(t, testDB)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, testDB.DB)

	_, err := authService.Login(ctx, service.LoginInput{
		Email:    user.Email,
		Password: password,
	})
	require.NoError(t, err)

	var record domain.LoginHistory
	require.NoError(t, testDB.DB.First(&record, "user_id = ?", user.ID).Error)
	assert.Equal(t, service.UnknownClient, record.IPAddress)
	assert.Equal(t, service.UnknownClient, record.UserAgent)
}

func TestAuthService_NewDeviceDetection(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	authService, mailer := newAuthService(t, testDB)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, testDB.DB)

	login := func(ip, agent string) *service.AuthResult {
		t.Helper()
		result, err := authService.Login(ctx, service.LoginInput{
			Email:     user.Email,
			Password:  password,
			IPAddress: ip,
			UserAgent: agent,
		})
		require.NoError(t, err)
		return result
	}

	// First-ever login: novel pair, but no prior history to compare against.
	result := login("10.0.0.1", "agent-a")
	assert.False(t, result.NewDeviceDetected, "first login must not be flagged")

	// Same pair again: known device.
	result = login("10.0.0.1", "agent-a")
	assert.False(t, result.NewDeviceDetected)

	// Same address, different agent: new device.
	result = login("10.0.0.1", "agent-b")
	assert.True(t, result.NewDeviceDetected)

	// Alert is dispatched asynchronously for the flagged login only.
	assert.Eventually(t, func() bool {
		return len(mailer.Sent()) == 1
	}, 2*time.Second, 10*time.Millisecond, "expected exactly one alert")

	sent := mailer.Sent()[0]
	assert.Equal(t, user.Email, sent.Email)
	assert.Equal(t, "10.0.0.1", sent.IPAddress)
	assert.Equal(t, "agent-b", sent.UserAgent)
}

func TestAuthService_NewDeviceDetection_WindowIsBounded(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	authService, _ := newAuthService(t, testDB)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, testDB.DB)

	// Seed a device seen 11 logins ago, pushed out of the window by ten
	// more recent logins from another device.
	base := time.Now().Add(-time.Hour)
	testutil.BuildLoginHistory(t, testDB.DB, user.ID, "10.0.0.99", "old-agent", base)
	for i := 0; i < 10; i++ {
		testutil.BuildLoginHistory(t, testDB.DB, user.ID, "10.0.0.1", "busy-agent",
			base.Add(time.Duration(i+1)*time.Minute))
	}

	// The old pair no longer appears in the last 10 records, so it is
	// reported as new again. Deliberate bounded-window behavior.
	result, err := authService.Login(ctx, service.LoginInput{
		Email:     user.Email,
		Password:  password,
		IPAddress: "10.0.0.99",
		UserAgent: "old-agent",
	})
	require.NoError(t, err)
	assert.True(t, result.NewDeviceDetected)

	// The busy pair is still inside the window.
	result, err = authService.Login(ctx, service.LoginInput{
		Email:     user.Email,
		Password:  password,
		IPAddress: "10.0.0.1",
		UserAgent: "busy-agent",
	})
	require.NoError(t, err)
	assert.False(t, result.NewDeviceDetected)
}

func TestAuthService_Login_MailFailureDoesNotFailLogin(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	authService, mailer := newAuthService(t, testDB)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, testDB.DB)
	testutil.BuildLoginHistory(t, testDB.DB, user.ID, "10.0.0.1", "agent-a", time.Now().Add(-time.Minute))

	mailer.FailNext()

	result, err := authService.Login(ctx, service.LoginInput{
		Email:     user.Email,
		Password:  password,
		IPAddress: "10.0.0.2",
		UserAgent: "agent-b",
	})
	require.NoError(t, err, "login must succeed even when the alert cannot be sent")
	assert.True(t, result.NewDeviceDetected)
}

func TestAuthService_GetActiveUser(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	authService, _ := newAuthService(t, testDB)
	ctx := context.Background()

	active, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	deleted, _ := testutil.NewUserBuilder().WithDeleted().Build(t, testDB.DB)

	got, err := authService.GetActiveUser(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, active.ID, got.ID)

	_, err = authService.GetActiveUser(ctx, deleted.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound, "soft-deleted accounts must not resolve")

	_, err = authService.GetActiveUser(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestAuthService_ValidateToken_RejectsExpired(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	cfg.JWTExpiryMinutes = -1
	logger := slog.New(slog.DiscardHandler)
	authService := service.NewAuthService(repos.User, repos.LoginHistory, testutil.NewRecordingMailer(), cfg, logger)

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	token, err := authService.GenerateToken(user)
	require.NoError(t, err)

	_, err = authService.ValidateToken(token)
	assert.Error(t, err)
}

func TestAuthService_ValidateToken_RejectsTampered(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	authService, _ := newAuthService(t, testDB)

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	token, err := authService.GenerateToken(user)
	require.NoError(t, err)

	_, err = authService.ValidateToken(fmt.Sprintf("%sx", token))
	assert.Error(t, err)
}
