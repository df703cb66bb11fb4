package tgtransport_test

import (
	"errors"
	"testing"

	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/krau/SaveLink-Bot/core/delivery/tgtransport"
)

func TestMessageID(t *testing.T) {
	tests := []struct {
		name string
		upd  tg.UpdatesClass
		want int
	}{
		{"short sent", &tg.UpdateShortSentMessage{ID: 11}, 11},
		{"new message", &tg.Updates{Updates: []tg.UpdateClass{
			&tg.UpdateNewMessage{Message: &tg.Message{ID: 22}},
		}}, 22},
		{"channel message", &tg.Updates{Updates: []tg.UpdateClass{
			&tg.UpdateReadHistoryOutbox{},
			&tg.UpdateNewChannelMessage{Message: &tg.Message{ID: 33}},
		}}, 33},
		{"message id", &tg.UpdatesCombined{Updates: []tg.UpdateClass{
			&tg.UpdateMessageID{ID: 44},
		}}, 44},
		{"empty", &tg.UpdatesTooLong{}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tgtransport.MessageID(tc.upd); got != tc.want {
				t.Fatalf("MessageID() = %d; want %d", got, tc.want)
			}
		})
	}
}

func TestIsNotModified(t *testing.T) {
	if !tgtransport.IsNotModified(tgerr.New(400, "MESSAGE_NOT_MODIFIED")) {
		t.Fatalf("MESSAGE_NOT_MODIFIED should match")
	}
	if tgtransport.IsNotModified(errors.New("boom")) {
		t.Fatalf("plain error should not match")
	}
	if tgtransport.IsNotModified(nil) {
		t.Fatalf("nil should not match")
	}
}
