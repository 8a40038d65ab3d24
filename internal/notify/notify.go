// Package notify shows desktop notifications for playback and generation.
package notify

// Urgency is the freedesktop urgency hint.
type Urgency byte

const (
	UrgencyLow    Urgency = 0
	UrgencyNormal Urgency = 1
)

// Notification is one desktop notification.
type Notification struct {
	Title string
	Body  string
	// Icon is a local file path or a themed icon name.
	Icon    string
	Timeout int32 // ms, -1 = server default
	// ReplacesID updates an existing notification in place when non-zero.
	ReplacesID uint32
	Urgency    Urgency
}

// Notifier delivers notifications. Implementations return id 0 when nothing
// was shown.
type Notifier interface {
	Notify(n Notification) (uint32, error)
	Close(id uint32) error
}

type disabled struct{}

func (disabled) Notify(Notification) (uint32, error) { return 0, nil }
func (disabled) Close(uint32) error                 { return nil }

// Disabled returns a notifier that drops everything.
func Disabled() Notifier { return disabled{} }
