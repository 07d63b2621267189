package payment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/orders/internal/domain/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewHTTPClientValidatesURL(t *testing.T) {
	if _, err := NewHTTPClient("://bad-url", "", time.Second, testLogger()); err == nil {
		t.Fatal("expected error for invalid url")
	}
	if _, err := NewHTTPClient("/relative", "", time.Second, testLogger()); err == nil {
		t.Fatal("expected error for relative url")
	}
}

func TestCreatePayment(t *testing.T) {
	var (
		gotPath string
		gotKey  string
		gotBody createRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":42,"orderId":"o1","price":60.5,"pixQrCode":"qr-code","pixQrCode64":"cXItY29kZQ=="}`)
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL, "pay-key", time.Second, testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	payment, err := client.CreatePayment(context.Background(), "o1", 60.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/private/payment" || gotKey != "pay-key" {
		t.Fatalf("unexpected request path=%q key=%q", gotPath, gotKey)
	}
	if gotBody.OrderID != "o1" || gotBody.Price != 60.5 {
		t.Fatalf("unexpected request body %+v", gotBody)
	}
	if payment.ID != 42 || payment.OrderID != "o1" || payment.Price != 60.5 {
		t.Fatalf("unexpected payment %+v", payment)
	}
	if payment.PixQRCode != "qr-code" || payment.PixQRCodeBase64 != "cXItY29kZQ==" {
		t.Fatalf("unexpected pix codes %+v", payment)
	}
}

func TestCreatePaymentFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "upstream message", status: http.StatusUnprocessableEntity, body: `{"message":"Invalid price"}`, wantMsg: "Invalid price"},
		{name: "plain text", status: http.StatusBadGateway, body: `bad gateway`, wantMsg: defaultCreateFailure},
		{name: "malformed success body", status: http.StatusOK, body: `[]`, wantMsg: defaultCreateFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			client, err := NewHTTPClient(srv.URL, "", time.Second, testLogger())
			if err != nil {
				t.Fatalf("failed to create client: %v", err)
			}

			_, err = client.CreatePayment(context.Background(), "o1", 10)
			if !errors.Is(err, domainErrors.ErrCreatePayment) {
				t.Fatalf("expected create payment error, got %v", err)
			}
			if msg := domainErrors.MessageOf(err); msg != tt.wantMsg {
				t.Fatalf("expected message %q, got %q", tt.wantMsg, msg)
			}
		})
	}
}

func TestCreatePaymentTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client, err := NewHTTPClient(srv.URL, "", 50*time.Millisecond, testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	_, err = client.CreatePayment(context.Background(), "o1", 10)
	if !errors.Is(err, domainErrors.ErrCreatePayment) || domainErrors.MessageOf(err) != defaultCreateFailure {
		t.Fatalf("expected default create failure, got %v", err)
	}
}
