package whatsapp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wasales_backend/platform/logger"
)

type testWhatsAppConfig struct {
	url      string
	key      string
	deviceID string
}

func (c testWhatsAppConfig) GetWhatsAppURL() string { return c.url }
func (c testWhatsAppConfig) GetWhatsAppKey() string { return c.key }
func (c testWhatsAppConfig) GetWhatsAppDeviceID() string { return c.deviceID }

func TestNewClient_DisabledWithoutURL(t *testing.T) {
	client := NewClient(testWhatsAppConfig{}, logger.New("test"))
	if client != nil {
		t.Fatalf("expected nil client when no gateway URL is configured")
	}
	if err := client.SendMessage(context.Background(), "+14155552671", "hello"); err != nil {
		t.Fatalf("nil client send: %v", err)
	}
}

func TestSendAgentAlert_PostsToGateway(t *testing.T) {
	var (
		gotPath   string
		gotAuth   string
		gotDevice string
		gotBody   sendMessageRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotDevice = r.Header.Get("X-Device-Id")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(sendMessageResponse{Code: "SUCCESS", Message: "sent"})
	}))
	defer srv.Close()

	client := NewClient(testWhatsAppConfig{
		url:      srv.URL + "/",
		key:      "agent:secret",
		deviceID: "device-1",
	}, logger.New("test"))

	err := client.SendAgentAlert(context.Background(), "+14155552671", "conv-9", "hot", 72, "close_sale")
	if err != nil {
		t.Fatalf("SendAgentAlert: %v", err)
	}

	if gotPath != "/send/message" {
		t.Fatalf("path = %q, want /send/message", gotPath)
	}
	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("agent:secret"))
	if gotAuth != wantAuth {
		t.Fatalf("Authorization = %q, want %q", gotAuth, wantAuth)
	}
	if gotDevice != "device-1" {
		t.Fatalf("X-Device-Id = %q, want device-1", gotDevice)
	}
	if gotBody.Phone != "14155552671" {
		t.Fatalf("phone = %q, want gowa format without the plus", gotBody.Phone)
	}
	for _, part := range []string{"conv-9", "hot", "72", "close_sale"} {
		if !strings.Contains(gotBody.Message, part) {
			t.Fatalf("alert message %q missing %q", gotBody.Message, part)
		}
	}
}

func TestSendMessage_GatewayRejectionWithOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sendMessageResponse{Code: "SESSION_NOT_FOUND", Message: "device not linked"})
	}))
	defer srv.Close()

	client := NewClient(testWhatsAppConfig{url: srv.URL}, logger.New("test"))
	err := client.SendMessage(context.Background(), "+14155552671", "hello")
	if err == nil {
		t.Fatalf("expected error for non-SUCCESS gateway code")
	}
	if !strings.Contains(err.Error(), "SESSION_NOT_FOUND") {
		t.Fatalf("error %q should carry the gateway code", err)
	}
}

func TestSendMessage_GatewayErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(sendMessageResponse{Code: "INTERNAL", Message: "broker down"})
	}))
	defer srv.Close()

	client := NewClient(testWhatsAppConfig{url: srv.URL}, logger.New("test"))
	if err := client.SendMessage(context.Background(), "+14155552671", "hello"); err == nil {
		t.Fatalf("expected error for HTTP 500 from gateway")
	}
}

func TestBasicAuthHeader_PassesThroughExistingScheme(t *testing.T) {
	ready := "Basic YWdlbnQ6c2VjcmV0"
	if got := basicAuthHeader(ready); got != ready {
		t.Fatalf("basicAuthHeader(%q) = %q", ready, got)
	}
}
