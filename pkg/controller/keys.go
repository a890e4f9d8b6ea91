package controller

import (
	"sync"
	"unicode"

	"github.com/gdamore/tcell/v2"
)

// Rune keys share the event maps with named keys such as tcell.KeyTab. Printable ASCII runes
// are below tcell.KeyRune, so their code points can be used as tcell.Key values directly.
const (
	KeySpace  tcell.Key = ' '
	KeyC      tcell.Key = 'c'
	KeyD      tcell.Key = 'd'
	KeyE      tcell.Key = 'e'
	KeyN      tcell.Key = 'n'
	KeyQ      tcell.Key = 'q'
	KeyX      tcell.Key = 'x'
	KeyShiftH tcell.Key = 'H'
	KeyShiftJ tcell.Key = 'J'
	KeyShiftK tcell.Key = 'K'
	KeyShiftL tcell.Key = 'L'
)

var keyNamesOnce sync.Once

// initKeys registers display names for the rune keys so the shortcut header can show them.
func initKeys() {
	keyNamesOnce.Do(func() {
		for key, name := range map[tcell.Key]string{
			KeySpace:  "Space",
			KeyC:      "c",
			KeyD:      "d",
			KeyE:      "e",
			KeyN:      "n",
			KeyQ:      "q",
			KeyX:      "x",
			KeyShiftH: "H",
			KeyShiftJ: "J",
			KeyShiftK: "K",
			KeyShiftL: "L",
		} {
			tcell.KeyNames[key] = name
		}
	})
}

// AsKey maps an event to the key used in the event maps. Non-ASCII runes map to tcell.KeyRune.
func AsKey(evt *tcell.EventKey) tcell.Key {
	if evt.Key() != tcell.KeyRune {
		return evt.Key()
	}

	if evt.Rune() > unicode.MaxASCII {
		return tcell.KeyRune
	}

	return tcell.Key(evt.Rune())
}
