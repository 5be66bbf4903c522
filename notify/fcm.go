package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"nextride/utils"
)

// FCM HTTP API (legacy). Uses the server key from Firebase Console >
// Project Settings > Cloud Messaging.

const fcmEndpoint = "https://fcm.googleapis.com/fcm/send"

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Sound string `json:"sound,omitempty"`
}

type fcmMessage struct {
	To           string            `json:"to,omitempty"`
	Notification *fcmNotification  `json:"notification,omitempty"`
	Data         map[string]string `json:"data,omitempty"`
	Priority     string            `json:"priority,omitempty"`
}

// FCMSender pushes to devices through Firebase Cloud Messaging. A missing
// server key disables push silently; pushes are best-effort everywhere.
type FCMSender struct {
	ServerKey string
	Endpoint  string
	HTTP      *http.Client
}

func NewFCMSender() *FCMSender {
	return &FCMSender{
		ServerKey: os.Getenv("FCM_SERVER_KEY"),
		Endpoint:  fcmEndpoint,
		HTTP:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *FCMSender) Push(token, title, body string, data map[string]string) error {
	if s.ServerKey == "" {
		utils.Logger.Warn("FCM_SERVER_KEY not set, skipping push notification")
		return nil
	}
	if token == "" {
		return nil
	}

	msg := fcmMessage{
		To: token,
		Notification: &fcmNotification{
			Title: title,
			Body:  body,
			Sound: "default",
		},
		Data:     data,
		Priority: "high",
	}

	jsonData, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.Endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "key="+s.ServerKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.HTTP.Do(req)
	if err != nil {
		utils.Logger.Error("FCM request failed", zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		utils.Logger.Error("FCM error", zap.Int("status", resp.StatusCode))
		return fmt.Errorf("FCM error: %s", resp.Status)
	}

	return nil
}
