package playerbar

import "fmt"

// RenderVolume renders the volume indicator.
// Format: "vol 100%" or "muted"
func RenderVolume(volume float64, muted bool) string {
	if muted {
		return "muted"
	}
	return fmt.Sprintf("vol %3d%%", int(volume*100+0.5))
}
