package effects

import "github.com/gen2brain/beeep"

// Beeper implements SoundPlayer and DesktopNotifier on top of the host
// notification facilities. Both directions are best-effort: headless hosts
// and denied permissions surface as errors the pipeline swallows.
type Beeper struct {
	appName string
}

// NewBeeper creates a Beeper labelled with appName in desktop popups.
func NewBeeper(appName string) *Beeper {
	return &Beeper{appName: appName}
}

// Play replays the alert beep from the start.
func (b *Beeper) Play() error {
	return beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration)
}

// Probe checks notification support without raising a popup.
func (b *Beeper) Probe() error {
	// beeep has no permission API; the first Push reports real failures.
	return nil
}

// Push raises an OS-level notification.
func (b *Beeper) Push(title, body string) error {
	beeep.AppName = b.appName
	return beeep.Notify(title, body, "")
}
