package chats

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func msgUpdate(id int, chatID int64, chatType, title string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: id,
		Message: &tgbotapi.Message{
			Chat: &tgbotapi.Chat{ID: chatID, Type: chatType, Title: title},
		},
	}
}

func TestCollectDeduplicates(t *testing.T) {
	updates := []tgbotapi.Update{
		msgUpdate(1, 100, "private", ""),
		msgUpdate(2, 100, "private", ""),
		msgUpdate(3, -200, "group", "friends"),
	}

	infos := Collect(updates)
	if len(infos) != 2 {
		t.Fatalf("expected 2 distinct chats, got %d", len(infos))
	}
}

func TestCollectLooksInAllLocations(t *testing.T) {
	updates := []tgbotapi.Update{
		{EditedMessage: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1, Type: "private", FirstName: "Ann"}}},
		{ChannelPost: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: -2, Type: "channel", Title: "news"}}},
		{CallbackQuery: &tgbotapi.CallbackQuery{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 3, Type: "private", UserName: "bob"}}}},
		{MyChatMember: &tgbotapi.ChatMemberUpdated{Chat: tgbotapi.Chat{ID: -4, Type: "supergroup", Title: "big"}}},
		{ChatJoinRequest: &tgbotapi.ChatJoinRequest{Chat: tgbotapi.Chat{ID: -5, Type: "supergroup", Title: "gate"}}},
	}

	infos := Collect(updates)
	if len(infos) != 5 {
		t.Fatalf("expected 5 chats from distinct locations, got %d: %+v", len(infos), infos)
	}
}

func TestCollectSortsByTypeThenID(t *testing.T) {
	updates := []tgbotapi.Update{
		msgUpdate(1, 30, "private", ""),
		msgUpdate(2, -10, "group", "b"),
		msgUpdate(3, 20, "private", ""),
		msgUpdate(4, -20, "group", "a"),
	}

	infos := Collect(updates)
	want := []struct {
		chatType string
		id       int64
	}{
		{"group", -20},
		{"group", -10},
		{"private", 20},
		{"private", 30},
	}
	for i, w := range want {
		if infos[i].Type != w.chatType || infos[i].ID != w.id {
			t.Fatalf("position %d: got %+v, want %+v", i, infos[i], w)
		}
	}
}

func TestCollectFallbackTitles(t *testing.T) {
	updates := []tgbotapi.Update{
		msgUpdate(1, 1, "private", ""),
	}
	updates[0].Message.Chat.FirstName = "Ann"

	infos := Collect(updates)
	if infos[0].Title != "Ann" {
		t.Fatalf("first name should back the title, got %q", infos[0].Title)
	}

	bare := Collect([]tgbotapi.Update{msgUpdate(2, 2, "private", "")})
	if bare[0].Title != "unknown" {
		t.Fatalf("chats with no name should read unknown, got %q", bare[0].Title)
	}
}

func TestLastUpdateID(t *testing.T) {
	if got := LastUpdateID(nil); got != -1 {
		t.Fatalf("empty batch should return -1, got %d", got)
	}

	updates := []tgbotapi.Update{
		msgUpdate(7, 1, "private", ""),
		msgUpdate(12, 2, "private", ""),
		msgUpdate(9, 3, "private", ""),
	}
	if got := LastUpdateID(updates); got != 12 {
		t.Fatalf("expected 12, got %d", got)
	}
}
