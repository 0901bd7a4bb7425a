package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/avdeev/events-manager/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	name     string
	email    string
	password string
	deleted  bool
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		name:     fmt.Sprintf("Test User %s", suffix),
		email:    fmt.Sprintf("testuser_%s@example.com", suffix),
		password: "testpassword123",
	}
}

func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.name = name
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// WithDeleted marks the user soft-deleted at build time
func (b *UserBuilder) WithDeleted() *UserBuilder {
	b.deleted = true
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	user := &domain.User{
		ID:        uuid.New(),
		Name:      b.name,
		Email:     b.email,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := user.SetPassword(b.password); err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if b.deleted {
		now := time.Now()
		user.DeletedAt = &now
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// EventBuilder creates test events
type EventBuilder struct {
	title       string
	description *string
	date        time.Time
	deleted     bool
}

func NewEventBuilder() *EventBuilder {
	return &EventBuilder{
		title: fmt.Sprintf("Test Event %s", uuid.New().String()[:8]),
		date:  time.Now().Add(7 * 24 * time.Hour).Truncate(time.Second),
	}
}

func (b *EventBuilder) WithTitle(title string) *EventBuilder {
	b.title = title
	return b
}

func (b *EventBuilder) WithDescription(description string) *EventBuilder {
	b.description = &description
	return b
}

func (b *EventBuilder) WithDate(date time.Time) *EventBuilder {
	b.date = date
	return b
}

func (b *EventBuilder) WithDeleted() *EventBuilder {
	b.deleted = true
	return b
}

func (b *EventBuilder) Build(t *testing.T, db *gorm.DB, creatorID uuid.UUID) *domain.Event {
	t.Helper()

	event := &domain.Event{
		ID:          uuid.New(),
		Title:       b.title,
		Description: b.description,
		Date:        b.date,
		CreatedBy:   creatorID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if b.deleted {
		now := time.Now()
		event.DeletedAt = &now
	}

	if err := db.Create(event).Error; err != nil {
		t.Fatalf("failed to create event: %v", err)
	}

	return event
}

// BuildLoginHistory inserts a history row with an explicit timestamp so tests
// control the recency ordering.
func BuildLoginHistory(t *testing.T, db *gorm.DB, userID uuid.UUID, ip, agent string, loginAt time.Time) *domain.LoginHistory {
	t.Helper()

	record := &domain.LoginHistory{
		ID:        uuid.New(),
		UserID:    userID,
		IPAddress: ip,
		UserAgent: agent,
		LoginAt:   loginAt,
	}
	if err := db.Create(record).Error; err != nil {
		t.Fatalf("failed to create login history: %v", err)
	}
	return record
}

// SentAlert captures one mailer invocation.
type SentAlert struct {
	Email     string
	Name      string
	IPAddress string
	UserAgent string
	LoginAt   time.Time
}

// RecordingMailer implements mail.Mailer and records every send for
// assertions. Safe for concurrent use; alert dispatch happens off the
// request goroutine.
type RecordingMailer struct {
	mu   sync.Mutex
	sent []SentAlert
	fail bool
}

func NewRecordingMailer() *RecordingMailer {
	return &RecordingMailer{}
}

// FailNext makes all subsequent sends return an error.
func (m *RecordingMailer) FailNext() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = true
}

func (m *RecordingMailer) SendNewDeviceAlert(_ context.Context, email, name, ipAddress, userAgent string, loginAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return fmt.Errorf("simulated smtp failure")
	}
	m.sent = append(m.sent, SentAlert{
		Email:     email,
		Name:      name,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		LoginAt:   loginAt,
	})
	return nil
}

// Sent returns a copy of the recorded alerts.
func (m *RecordingMailer) Sent() []SentAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentAlert, len(m.sent))
	copy(out, m.sent)
	return out
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	Message           string `json:"message"`
	Token             string `json:"token"`
	NewDeviceDetected bool   `json:"newDeviceDetected"`
	User              struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

// BuildAndAuthenticate creates a user via API and returns the user and token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	resp := ts.PostJSON(t, "/auth/register", "", map[string]string{
		"name":     b.name,
		"email":    b.email,
		"password": b.password,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("failed to register user: status %d", resp.StatusCode)
	}

	var auth AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		t.Fatalf("failed to decode auth response: %v", err)
	}

	userID, err := uuid.Parse(auth.User.ID)
	if err != nil {
		t.Fatalf("failed to parse user id: %v", err)
	}

	var user domain.User
	if err := ts.DB.DB.First(&user, "id = ?", userID).Error; err != nil {
		t.Fatalf("failed to load registered user: %v", err)
	}

	return &user, auth.Token
}

// PostJSON issues a POST with an optional bearer token
func (ts *TestServer) PostJSON(t *testing.T, path, token string, body interface{}) *http.Response {
	t.Helper()
	return ts.request(t, http.MethodPost, path, token, body)
}

// PutJSON issues a PUT with an optional bearer token
func (ts *TestServer) PutJSON(t *testing.T, path, token string, body interface{}) *http.Response {
	t.Helper()
	return ts.request(t, http.MethodPut, path, token, body)
}

// Get issues a GET with an optional bearer token
func (ts *TestServer) Get(t *testing.T, path, token string) *http.Response {
	t.Helper()
	return ts.request(t, http.MethodGet, path, token, nil)
}

// Delete issues a DELETE with an optional bearer token
func (ts *TestServer) Delete(t *testing.T, path, token string) *http.Response {
	t.Helper()
	return ts.request(t, http.MethodDelete, path, token, nil)
}

func (ts *TestServer) request(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL(path), reqBody)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}
