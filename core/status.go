package core

import (
	"os"

	"github.com/krau/SaveLink-Bot/common/i18n"
	"github.com/krau/SaveLink-Bot/common/i18n/i18nk"
	"github.com/krau/SaveLink-Bot/common/utils/strutil"
	"github.com/krau/SaveLink-Bot/core/retriever"
	"github.com/krau/SaveLink-Bot/core/session"
	"github.com/krau/SaveLink-Bot/pkg/progress"
)

const statusURLLen = 60

func (e *Engine) queueText(state *drainState, sess *session.Session) string {
	return i18n.T(i18nk.BotMsgProgressQueue, map[string]any{
		"Index": state.index,
		"Total": state.index + sess.Queued(),
	})
}

func resolvingText(index, total int, url string) string {
	return i18n.T(i18nk.BotMsgProgressResolving, map[string]any{
		"Index": index,
		"Total": total,
		"URL":   strutil.Truncate(url, statusURLLen),
	})
}

func transferText(download bool, index, total int, snap progress.Snapshot) string {
	data := snap.Map()
	data["Index"] = index
	data["Total"] = total
	key := i18nk.BotMsgProgressUploading
	if download {
		key = i18nk.BotMsgProgressDownloading
	}
	return i18n.T(key, data)
}

var reasonKeys = map[retriever.Reason]i18nk.Key{
	retriever.ReasonUnsupported: i18nk.ReasonUnsupported,
	retriever.ReasonHTTPStatus:  i18nk.ReasonHTTPStatus,
	retriever.ReasonEmptyBody:   i18nk.ReasonEmptyBody,
	retriever.ReasonHTMLPage:    i18nk.ReasonHTMLPage,
	retriever.ReasonNoMatch:     i18nk.ReasonNoMatch,
	retriever.ReasonTimeout:     i18nk.ReasonTimeout,
	retriever.ReasonTooLarge:    i18nk.ReasonTooLarge,
	retriever.ReasonNetwork:     i18nk.ReasonNetwork,
	retriever.ReasonCancelled:   i18nk.ReasonCancelled,
}

// reasonText localizes a retrieval failure. A nil failure means the upload failed.
func reasonText(f *retriever.Failure) string {
	if f == nil {
		return i18n.T(i18nk.ReasonDelivery)
	}
	key, ok := reasonKeys[f.Reason]
	if !ok {
		return i18n.T(i18nk.ReasonUnknown)
	}
	if f.Reason == retriever.ReasonTooLarge {
		return i18n.T(key, map[string]any{"Limit": progress.FormatSize(f.Limit)})
	}
	return i18n.T(key)
}

func removeFiles(files []retriever.SingleFile) {
	for _, f := range files {
		os.Remove(f.Path)
	}
}
