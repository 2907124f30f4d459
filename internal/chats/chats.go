// Package chats extracts the distinct chats referenced by a batch of
// Telegram updates.
package chats

import (
	"sort"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ChatInfo identifies one chat seen in the update feed.
type ChatInfo struct {
	ID    int64
	Type  string
	Title string
}

// Collect deduplicates the chats referenced anywhere in the updates and
// returns them sorted by type, then numeric id. An update can carry a chat
// in several places depending on its kind; all of them are checked.
func Collect(updates []tgbotapi.Update) []ChatInfo {
	seen := make(map[int64]ChatInfo)
	for _, update := range updates {
		for _, chat := range chatsOf(update) {
			if chat == nil || chat.ID == 0 {
				continue
			}
			if _, ok := seen[chat.ID]; ok {
				continue
			}
			seen[chat.ID] = ChatInfo{ID: chat.ID, Type: chat.Type, Title: displayName(chat)}
		}
	}

	out := make([]ChatInfo, 0, len(seen))
	for _, info := range seen {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func chatsOf(update tgbotapi.Update) []*tgbotapi.Chat {
	var chats []*tgbotapi.Chat

	for _, msg := range []*tgbotapi.Message{
		update.Message,
		update.EditedMessage,
		update.ChannelPost,
		update.EditedChannelPost,
	} {
		if msg != nil {
			chats = append(chats, msg.Chat)
		}
	}

	if update.CallbackQuery != nil && update.CallbackQuery.Message != nil {
		chats = append(chats, update.CallbackQuery.Message.Chat)
	}
	if update.MyChatMember != nil {
		chats = append(chats, &update.MyChatMember.Chat)
	}
	if update.ChatMember != nil {
		chats = append(chats, &update.ChatMember.Chat)
	}
	if update.ChatJoinRequest != nil {
		chats = append(chats, &update.ChatJoinRequest.Chat)
	}

	return chats
}

func displayName(chat *tgbotapi.Chat) string {
	switch {
	case chat.Title != "":
		return chat.Title
	case chat.UserName != "":
		return chat.UserName
	case chat.FirstName != "":
		return chat.FirstName
	default:
		return "unknown"
	}
}

// LastUpdateID returns the highest update id in the batch, or -1 when the
// batch is empty. Used to acknowledge the feed.
func LastUpdateID(updates []tgbotapi.Update) int {
	last := -1
	for _, update := range updates {
		if update.UpdateID > last {
			last = update.UpdateID
		}
	}
	return last
}
