package taskstatus

// Status is the lifecycle state of a link task.
type Status string

const (
	Queued      Status = "queued"
	Downloading Status = "downloading"
	Uploading   Status = "uploading"
	Done        Status = "done"
	Failed      Status = "failed"
	Cancelled   Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

// Terminal reports whether no further transition can happen.
func (s Status) Terminal() bool {
	switch s {
	case Done, Failed, Cancelled:
		return true
	}
	return false
}
