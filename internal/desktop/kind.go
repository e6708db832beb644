package desktop

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownKind is returned for application names the desktop cannot launch.
var ErrUnknownKind = errors.New("unknown application kind")

// Kind is an application hosted in a window.
type Kind int

const (
	KindMemory Kind = iota
	KindChat
	KindHangman
)

var kindNames = map[Kind]string{
	KindMemory:  "memory",
	KindChat:    "chat",
	KindHangman: "hangman",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

func ParseKind(name string) (Kind, error) {
	for kind, n := range kindNames {
		if n == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("parse kind %q: %w", name, ErrUnknownKind)
}

// KindSpec holds the per-kind window title and cascade bounds.
type KindSpec struct {
	Title string
	// Cap is the largest cascade offset.
	Cap int
	// Wrap is the offset from which the top coordinate is lifted by Lift.
	Wrap int
	Lift int
}

const cascadeStep = 30

var kindSpecs = map[Kind]KindSpec{
	KindMemory:  {Title: "Memory", Cap: 660, Wrap: 360, Lift: 330},
	KindChat:    {Title: "Chat", Cap: 570, Wrap: 300, Lift: 300},
	KindHangman: {Title: "Hangman", Cap: 540, Wrap: 330, Lift: 330},
}

func SpecFor(kind Kind) KindSpec {
	return kindSpecs[kind]
}

// Cascade returns the default position of the num-th window of this kind.
func (s KindSpec) Cascade(num int) Position {
	offset := cascadeStep * num
	if offset > s.Cap {
		offset = s.Cap
	}
	top := offset
	if offset >= s.Wrap {
		top = offset - s.Lift
	}
	return Position{Top: top, Left: offset}
}

// Position is a window's top-left corner in pixels.
type Position struct {
	Top  int `json:"top"`
	Left int `json:"left"`
}

// WindowID identifies a window within one desktop, rendered as "<kind>-<num>".
type WindowID struct {
	Kind Kind
	Num  int
}

func (id WindowID) String() string {
	return id.Kind.String() + "-" + strconv.Itoa(id.Num)
}

func ParseWindowID(value string) (WindowID, error) {
	name, num, ok := strings.Cut(value, "-")
	if !ok {
		return WindowID{}, fmt.Errorf("parse window id %q: missing number", value)
	}
	kind, err := ParseKind(name)
	if err != nil {
		return WindowID{}, err
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 0 {
		return WindowID{}, fmt.Errorf("parse window id %q: bad number", value)
	}
	return WindowID{Kind: kind, Num: n}, nil
}
