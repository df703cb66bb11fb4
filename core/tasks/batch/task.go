package batch

import (
	"fmt"
	"time"

	"github.com/krau/SaveLink-Bot/pkg/enums/taskstatus"
	"github.com/krau/SaveLink-Bot/pkg/linkkind"
	"github.com/rs/xid"
)

// Destination is where delivered files are posted.
type Destination struct {
	ChatID  int64
	TopicID int
}

type Task struct {
	ID      string
	UserID  int64
	URL     string
	Kind    linkkind.Kind
	Dest    Destination
	ReplyTo int
	Status  taskstatus.Status
	Created time.Time
}

func NewTask(userID int64, url string, dest Destination, replyTo int) *Task {
	return &Task{
		ID:      xid.New().String(),
		UserID:  userID,
		URL:     url,
		Kind:    linkkind.Classify(url),
		Dest:    dest,
		ReplyTo: replyTo,
		Status:  taskstatus.Queued,
		Created: time.Now(),
	}
}

func (t *Task) String() string {
	return fmt.Sprintf("[%s](%s %s)", t.ID, t.Kind, t.URL)
}
