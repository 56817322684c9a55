// Package gesture turns per-frame hand landmarks into debounced gestures:
// finger-state extraction, classification, temporal debounce and the
// major/minor hand arbitration.
package gesture

import (
	"fmt"
	"strings"
)

// FingerState is a 4-bit openness mask over the non-thumb fingers, packed
// most significant first: index, middle, ring, pinky. A set bit means the
// finger is extended.
type FingerState uint8

// Finger bits.
const (
	PinkyFinger  FingerState = 1 << iota // 0b0001
	RingFinger                           // 0b0010
	MiddleFinger                         // 0b0100
	IndexFinger                          // 0b1000

	AllFingers = IndexFinger | MiddleFinger | RingFinger | PinkyFinger
)

// Has reports whether every finger in f is extended.
func (s FingerState) Has(f FingerState) bool {
	return s&f == f
}

// String renders the mask as four binary digits, index first.
func (s FingerState) String() string {
	return fmt.Sprintf("%04b", uint8(s&AllFingers))
}

// Kind names a gesture in the fixed vocabulary.
type Kind int

const (
	// Palm is the resting gesture: no hand, or no action intended.
	Palm Kind = iota
	Fist
	Pinky
	Ring
	Mid
	Last3
	Index
	First2
	Last4
	Thumb
	// Other covers finger masks without a name of their own.
	Other
	VGest
	TwoFingerClosed
	PinchMajor
	PinchMinor
)

var kindNames = map[Kind]string{
	Palm:            "PALM",
	Fist:            "FIST",
	Pinky:           "PINKY",
	Ring:            "RING",
	Mid:             "MID",
	Last3:           "LAST3",
	Index:           "INDEX",
	First2:          "FIRST2",
	Last4:           "LAST4",
	Thumb:           "THUMB",
	Other:           "OTHER",
	VGest:           "V_GEST",
	TwoFingerClosed: "TWO_FINGER_CLOSED",
	PinchMajor:      "PINCH_MAJOR",
	PinchMinor:      "PINCH_MINOR",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	s = strings.ToUpper(s)
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return Palm, fmt.Errorf("unknown gesture %q", s)
}

// Finger masks that have a gesture name of their own.
const (
	fistMask   FingerState = 0
	last3Mask              = MiddleFinger | RingFinger | PinkyFinger
	first2Mask             = IndexFinger | MiddleFinger
)

// maskKind returns the named kind for a finger mask, or Other.
func maskKind(s FingerState) Kind {
	switch s {
	case fistMask:
		return Fist
	case PinkyFinger:
		return Pinky
	case RingFinger:
		return Ring
	case MiddleFinger:
		return Mid
	case last3Mask:
		return Last3
	case IndexFinger:
		return Index
	case first2Mask:
		return First2
	case AllFingers:
		return Last4
	}
	return Other
}

// Gesture is a classified hand pose. Kind is what consumers act on; Fingers
// keeps the originating mask for finger-derived gestures so that two
// unnamed masks (Kind Other) still compare as different candidates.
type Gesture struct {
	Kind    Kind
	Fingers FingerState
}

// Of returns the gesture for a kind. Kinds that correspond to a finger mask
// carry that mask.
func Of(k Kind) Gesture {
	for mask := FingerState(0); mask <= AllFingers; mask++ {
		if maskKind(mask) == k && k != Other {
			return Gesture{Kind: k, Fingers: mask}
		}
	}
	return Gesture{Kind: k}
}

// Gesture converts a finger mask into its base gesture.
func (s FingerState) Gesture() Gesture {
	s &= AllFingers
	return Gesture{Kind: maskKind(s), Fingers: s}
}

// Is reports whether g has kind k.
func (g Gesture) Is(k Kind) bool {
	return g.Kind == k
}

// IsPinch reports whether g is either pinch variant.
func (g Gesture) IsPinch() bool {
	return g.Kind == PinchMajor || g.Kind == PinchMinor
}

func (g Gesture) String() string {
	if g.Kind == Other {
		return fmt.Sprintf("OTHER(%s)", g.Fingers)
	}
	return g.Kind.String()
}

// MarshalText renders the gesture name for JSON and logs.
func (g Gesture) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}
