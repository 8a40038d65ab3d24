//go:build !linux

package notify

// New returns a disabled notifier: only the freedesktop bus is supported.
func New() (Notifier, error) {
	return Disabled(), nil
}
