package alerting

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"currency-rate-alerts/internal/telegram"
)

func newTestNotifier(t *testing.T, sendMessage http.HandlerFunc) *TelegramNotifier {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/getMe") {
			fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Rate","username":"ratewatcher_bot"}}`)
			return
		}
		sendMessage(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := telegram.NewClient("123:test-token", srv.URL+"/bot%s/%s", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return NewTelegramNotifier(client, -100500, zerolog.Nop())
}

func TestNotifySendsRenderedAlert(t *testing.T) {
	var gotChatID, gotText string
	notifier := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		gotChatID = r.FormValue("chat_id")
		gotText = r.FormValue("text")
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":1,"date":1,"chat":{"id":-100500,"type":"supergroup"},"text":"x"}}`)
	})

	note := Notification{
		Pair:      "EUR/KZT",
		Time:      time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC),
		Price:     decimal.NewFromFloat(521.37),
		Return:    0.031749,
		Z:         3.16,
		Threshold: 3.0,
	}
	if err := notifier.Notify(context.Background(), note); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	if gotChatID != "-100500" {
		t.Errorf("chat_id = %q, want -100500", gotChatID)
	}
	for _, want := range []string{
		"[EUR/KZT strong move]",
		"2026-02-03T12:00:00Z UTC",
		"Price: 521.3700",
		"Log-return: 0.031749",
		"Z-score: 3.16 (threshold 3.0)",
	} {
		if !strings.Contains(gotText, want) {
			t.Errorf("message missing %q:\n%s", want, gotText)
		}
	}
}

func TestNotifyPropagatesSendError(t *testing.T) {
	notifier := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
	})

	note := Notification{Pair: "EUR/KZT", Time: time.Now(), Price: decimal.NewFromInt(500)}
	if err := notifier.Notify(context.Background(), note); err == nil {
		t.Fatal("expected error when Bot API rejects the message")
	}
}
