package capability

// Kind identifies one gated notification surface.
type Kind string

const (
	KindToast     Kind = "toast"
	KindAlert     Kind = "alert"
	KindInput     Kind = "input"
	KindPinPrompt Kind = "prompt"
)

// Kinds returns every capability the gate tracks, in a stable order.
func Kinds() []Kind {
	return []Kind{KindToast, KindAlert, KindInput, KindPinPrompt}
}

// Valid reports whether the kind names a known capability.
func (k Kind) Valid() bool {
	switch k {
	case KindToast, KindAlert, KindInput, KindPinPrompt:
		return true
	}
	return false
}

// Flag is a single independent block reason. A capability is available for a
// given mask only when none of the mask's flags are set on it.
type Flag uint8

const (
	// FlagSystem blocks delivery while the platform is in a state that must
	// suppress notifications (factory mode, power-only boot).
	FlagSystem Flag = 1 << 0
	// FlagExternal blocks delivery on behalf of another service; the caller
	// supplies a reason string that is echoed back in rejection texts.
	FlagExternal Flag = 1 << 1
	// FlagUI blocks delivery while no presentation surface is subscribed.
	FlagUI Flag = 1 << 2

	// FlagAll is the full availability mask.
	FlagAll = FlagSystem | FlagExternal | FlagUI
)

func (f Flag) String() string {
	s := ""
	if f&FlagSystem != 0 {
		s += " system"
	}
	if f&FlagExternal != 0 {
		s += " external"
	}
	if f&FlagUI != 0 {
		s += " ui"
	}
	if s == "" {
		return "none"
	}
	return s[1:]
}
