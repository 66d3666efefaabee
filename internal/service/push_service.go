package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// beamsTokenTTL is how long a device auth token stays valid
const beamsTokenTTL = 24 * time.Hour

// Beams limits a single publish to this many users
const beamsMaxUsers = 1000

// PushService publishes notifications to Pusher Beams authenticated users
type PushService struct {
	instanceID string
	secretKey  string
	baseURL    string
	client     *http.Client
	now        func() time.Time
	log        *zap.SugaredLogger
}

// NewPushService creates a Beams client for instanceID
func NewPushService(instanceID, secretKey string, log *zap.SugaredLogger) *PushService {
	return &PushService{
		instanceID: instanceID,
		secretKey:  secretKey,
		baseURL:    fmt.Sprintf("https://%s.pushnotifications.pusher.com", instanceID),
		client:     &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
		log:        log,
	}
}

// BeamsToken is returned to a device authenticating as a user
type BeamsToken struct {
	Token string `json:"token"`
}

// GenerateToken signs a Beams auth token for userID
func (s *PushService) GenerateToken(userID string) (*BeamsToken, error) {
	if userID == "" {
		return nil, badRequest("user_id is required")
	}
	if len(userID) > 164 {
		return nil, badRequest("user_id is too long")
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    s.baseURL,
		ExpiresAt: jwt.NewNumericDate(now.Add(beamsTokenTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secretKey))
	if err != nil {
		return nil, fmt.Errorf("failed to sign beams token: %w", err)
	}
	return &BeamsToken{Token: signed}, nil
}

type beamsNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type beamsPublish struct {
	Users []string `json:"users"`
	Web   struct {
		Notification beamsNotification `json:"notification"`
	} `json:"web"`
	FCM struct {
		Notification beamsNotification `json:"notification"`
	} `json:"fcm"`
	APNS struct {
		Aps struct {
			Alert beamsNotification `json:"alert"`
		} `json:"aps"`
	} `json:"apns"`
}

// Notify publishes one notification to every user in emails
func (s *PushService) Notify(ctx context.Context, emails []string, title, body string) error {
	for start := 0; start < len(emails); start += beamsMaxUsers {
		end := start + beamsMaxUsers
		if end > len(emails) {
			end = len(emails)
		}
		if err := s.publish(ctx, emails[start:end], title, body); err != nil {
			return err
		}
	}
	return nil
}

func (s *PushService) publish(ctx context.Context, users []string, title, body string) error {
	n := beamsNotification{Title: title, Body: body}
	var payload beamsPublish
	payload.Users = users
	payload.Web.Notification = n
	payload.FCM.Notification = n
	payload.APNS.Aps.Alert = n

	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode publish: %w", err)
	}

	endpoint := fmt.Sprintf("%s/publish_api/v1/instances/%s/publishes/users", s.baseURL, s.instanceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("failed to build publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.secretKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("beams publish failed with status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	s.log.Debugw("notification published", "users", len(users), "title", title)
	return nil
}
