package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bably/internal/logger"
)

func TestPushServiceGenerateToken(t *testing.T) {
	svc := NewPushService("instance-1", "beams-secret", logger.Nop())
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	tok, err := svc.GenerateToken("parent@example.com")
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(tok.Token, claims, func(*jwt.Token) (any, error) {
		return []byte("beams-secret"), nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	require.NoError(t, err)
	assert.Equal(t, "parent@example.com", claims.Subject)
	assert.Equal(t, "https://instance-1.pushnotifications.pusher.com", claims.Issuer)
	assert.Equal(t, now.Add(24*time.Hour), claims.ExpiresAt.Time.UTC())

	_, err = svc.GenerateToken("")
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestPushServiceNotifyBatches(t *testing.T) {
	var (
		mu      sync.Mutex
		batches []beamsPublish
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/publish_api/v1/instances/instance-1/publishes/users", r.URL.Path)
		assert.Equal(t, "Bearer beams-secret", r.Header.Get("Authorization"))

		var p beamsPublish
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		mu.Lock()
		batches = append(batches, p)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	svc := NewPushService("instance-1", "beams-secret", logger.Nop())
	svc.baseURL = srv.URL
	svc.client = srv.Client()

	emails := make([]string, 1500)
	for i := range emails {
		emails[i] = fmt.Sprintf("user%d@example.com", i)
	}
	require.NoError(t, svc.Notify(context.Background(), emails, "Feed reminder", "It's time to feed Ivy"))

	require.Len(t, batches, 2)
	assert.Len(t, batches[0].Users, 1000)
	assert.Len(t, batches[1].Users, 500)
	assert.Equal(t, "Feed reminder", batches[0].Web.Notification.Title)
	assert.Equal(t, "It's time to feed Ivy", batches[1].APNS.Aps.Alert.Body)
}

func TestPushServicePublishFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad instance", http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	svc := NewPushService("instance-1", "beams-secret", logger.Nop())
	svc.baseURL = srv.URL

	err := svc.Notify(context.Background(), []string{"a@example.com"}, "t", "b")
	assert.ErrorContains(t, err, "status 401")
}
