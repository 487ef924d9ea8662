package preview

import "errors"

// State is the status of the most recent render attempt.
type State string

const (
	StateIdle       State = "idle"
	StateGenerating State = "generating"
	StateError      State = "error"
)

// SyntaxMessage is the notification shown when a render fails.
const SyntaxMessage = "Unable to render diagram, syntax is likely invalid"

// ErrSuperseded is returned by Commit when a newer commit replaced the
// request before it completed. The result was discarded.
var ErrSuperseded = errors.New("render superseded by a newer commit")

// Snapshot is the observable state of a Pipeline.
type Snapshot struct {
	Seq    uint64 `json:"seq"`
	Kind   string `json:"kind"`
	State  State  `json:"state"`
	Markup string `json:"markup,omitempty"`
}

// Level classifies a notification.
type Level string

const (
	LevelError Level = "error"
	LevelInfo  Level = "info"
)

// Notification is a transient message for the user.
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Notifier shows transient notifications. Dismiss removes whatever is
// currently shown.
type Notifier interface {
	Notify(n Notification)
	Dismiss()
}

// Listener receives every snapshot the pipeline publishes.
type Listener func(Snapshot)
