package tgutil

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/celestix/gotgproto/ext"
	"github.com/duke-git/lancet/v2/validator"
)

func ParseChatID(ctx *ext.Context, idOrUsername string) (int64, error) {
	idOrUsername = strings.TrimPrefix(strings.TrimSpace(idOrUsername), "@")
	if validator.IsIntStr(idOrUsername) {
		return strconv.ParseInt(idOrUsername, 10, 64)
	}
	chat, err := ctx.ResolveUsername(idOrUsername)
	if err != nil {
		return 0, err
	}
	if chat == nil {
		return 0, fmt.Errorf("no chat found for username: %s", idOrUsername)
	}
	chatID := chat.GetID()
	if chatID == 0 {
		return 0, fmt.Errorf("chat ID is zero for username: %s", idOrUsername)
	}
	return chatID, nil
}

// StripChannelPrefix converts a bot API style -100xxxx channel id into the MTProto id.
func StripChannelPrefix(chatID int64) int64 {
	s := strconv.FormatInt(chatID, 10)
	if rest, ok := strings.CutPrefix(s, "-100"); ok {
		if id, err := strconv.ParseInt(rest, 10, 64); err == nil {
			return id
		}
	}
	return chatID
}
