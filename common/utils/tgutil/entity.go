package tgutil

import "github.com/gotd/td/tg"

// EntityURLs returns the targets of text links, which do not appear in the message text.
func EntityURLs(msg *tg.Message) []string {
	if msg == nil {
		return nil
	}
	var urls []string
	for _, e := range msg.Entities {
		if link, ok := e.(*tg.MessageEntityTextURL); ok && link.URL != "" {
			urls = append(urls, link.URL)
		}
	}
	return urls
}

// TopicID returns the forum topic a message was posted in, 0 outside forums.
func TopicID(msg *tg.Message) int {
	if msg == nil {
		return 0
	}
	h, ok := msg.ReplyTo.(*tg.MessageReplyHeader)
	if !ok || !h.ForumTopic {
		return 0
	}
	if h.ReplyToTopID != 0 {
		return h.ReplyToTopID
	}
	return h.ReplyToMsgID
}
