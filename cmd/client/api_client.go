package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIClient handles HTTP communication with the backend.
type APIClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching the backend wire format.

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AuthResponse struct {
	Message           string `json:"message"`
	Token             string `json:"token"`
	User              User   `json:"user"`
	NewDeviceDetected bool   `json:"newDeviceDetected"`
}

type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type Event struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  *string    `json:"description"`
	Date         time.Time  `json:"date"`
	CreatedBy    string     `json:"createdBy"`
	Creator      *User      `json:"creator"`
	Participants []User     `json:"participants"`
	DeletedAt    *time.Time `json:"deletedAt"`
}

type ParticipationResult struct {
	Message       string `json:"message"`
	Participating bool   `json:"participating"`
}

func (c *APIClient) Register(name, email, password string) (*AuthResponse, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	var result AuthResponse
	if err := c.do(http.MethodPost, "/auth/register", body, http.StatusCreated, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *APIClient) Login(email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var result AuthResponse
	if err := c.do(http.MethodPost, "/auth/login", body, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *APIClient) Profile() (*Profile, error) {
	var result Profile
	if err := c.do(http.MethodGet, "/users/profile", nil, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *APIClient) PublicEvents(includeDeleted bool) ([]Event, error) {
	path := "/public/events"
	if includeDeleted {
		path += "?includeDeleted=true"
	}
	var result []Event
	if err := c.do(http.MethodGet, path, nil, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *APIClient) MyEvents() ([]Event, error) {
	var result []Event
	if err := c.do(http.MethodGet, "/users/events", nil, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *APIClient) CreateEvent(title, description string, date time.Time) (*Event, error) {
	body := map[string]interface{}{"title": title, "date": date}
	if description != "" {
		body["description"] = description
	}
	var result Event
	if err := c.do(http.MethodPost, "/events", body, http.StatusCreated, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *APIClient) DeleteEvent(id string) error {
	return c.do(http.MethodDelete, "/events/"+id, nil, http.StatusOK, nil)
}

func (c *APIClient) Participate(eventID string) (*ParticipationResult, error) {
	var result ParticipationResult
	if err := c.do(http.MethodPost, "/events/"+eventID+"/participate", nil, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *APIClient) DeleteAccount(userID string) error {
	return c.do(http.MethodDelete, "/users/"+userID, nil, http.StatusOK, nil)
}

func (c *APIClient) do(method, path string, body interface{}, wantStatus int, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return fmt.Errorf("%s %s failed (status %d): %s", method, path, resp.StatusCode, apiError(resp.Body))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func apiError(body io.Reader) string {
	data, _ := io.ReadAll(body)
	var envelope struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &envelope) == nil && envelope.Error != "" {
		return envelope.Error
	}
	return string(data)
}
