package handlers

import (
	"errors"
	"strings"

	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/celestix/gotgproto/types"
	"github.com/gotd/td/tg"
)

// groupDocument matches documents posted in basic groups and supergroups.
func groupDocument(m *types.Message) bool {
	if m == nil || m.Message == nil {
		return false
	}
	switch m.PeerID.(type) {
	case *tg.PeerChat, *tg.PeerChannel:
	default:
		return false
	}
	_, ok := m.Media.(*tg.MessageMediaDocument)
	return ok
}

// addressedToBot reports whether a group message replies to the bot or mentions it.
func addressedToBot(self *tg.User, m *types.Message) bool {
	if self == nil || m == nil || m.Message == nil {
		return false
	}
	if r := m.ReplyToMessage; r != nil && r.Message != nil {
		if from, ok := r.FromID.(*tg.PeerUser); ok && from.UserID == self.ID {
			return true
		}
	}
	if self.Username == "" {
		return false
	}
	return strings.Contains(strings.ToLower(m.Message.Message), "@"+strings.ToLower(self.Username))
}

// handleGroupDocument takes a .txt link list in a group. The files are delivered
// back into the group, inside the message's forum topic when there is one.
func handleGroupDocument(ctx *ext.Context, update *ext.Update) error {
	msg := update.EffectiveMessage
	if update.EffectiveUser() == nil || !addressedToBot(ctx.Self, msg) {
		return dispatcher.EndGroups
	}
	if err := checkUser(ctx, update); errors.Is(err, dispatcher.EndGroups) {
		return err
	}
	handleMediaMessage(ctx, update)
	return dispatcher.EndGroups
}
