//go:build linux

package notify

import (
	"strings"

	"github.com/godbus/dbus/v5"
)

const (
	busName   = "org.freedesktop.Notifications"
	busPath   = dbus.ObjectPath("/org/freedesktop/Notifications")
	appName   = "Mixtape"
	desktopID = "mixtape"
)

type busNotifier struct {
	obj dbus.BusObject
}

// New connects to the session bus. Without a bus, notifications are
// silently disabled.
func New() (Notifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return Disabled(), nil //nolint:nilerr // no session bus
	}
	return &busNotifier{obj: conn.Object(busName, busPath)}, nil
}

func (b *busNotifier) Notify(n Notification) (uint32, error) {
	call := b.obj.Call(busName+".Notify", 0,
		appName,
		n.ReplacesID,
		n.Icon,
		n.Title,
		n.Body,
		[]string{},
		hints(n),
		n.Timeout,
	)
	if call.Err != nil {
		return 0, call.Err
	}
	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (b *busNotifier) Close(id uint32) error {
	if id == 0 {
		return nil
	}
	return b.obj.Call(busName+".CloseNotification", 0, id).Err
}

// hints builds the freedesktop hint map. Artwork files are also passed as
// image-path so servers that ignore app_icon still show the cover.
func hints(n Notification) map[string]dbus.Variant {
	h := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(n.Urgency)),
		"desktop-entry": dbus.MakeVariant(desktopID),
	}
	if strings.HasPrefix(n.Icon, "/") {
		h["image-path"] = dbus.MakeVariant("file://" + n.Icon)
	}
	if n.ReplacesID != 0 {
		h["transient"] = dbus.MakeVariant(true)
	}
	return h
}
