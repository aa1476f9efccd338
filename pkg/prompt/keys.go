package prompt

import (
	"bufio"
)

// Key is a decoded keypress.
type Key int

const (
	KeyUnknown Key = iota
	KeyUp
	KeyDown
	KeyEnter
	KeyInterrupt
	KeyEscape
)

func (k Key) String() string {
	switch k {
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyEnter:
		return "enter"
	case KeyInterrupt:
		return "interrupt"
	case KeyEscape:
		return "escape"
	}
	return "unknown"
}

const (
	ctrlC = 0x03
	ctrlN = 0x0e
	ctrlP = 0x10
	esc   = 0x1b
)

// KeyReader decodes keypresses from a terminal in raw mode.
type KeyReader struct {
	r *bufio.Reader
}

func NewKeyReader(r *bufio.Reader) *KeyReader {
	return &KeyReader{r: r}
}

// ReadKey blocks until one keypress has been read. Bytes that do not form a
// known key decode as KeyUnknown. The reader's error is returned as is.
func (k *KeyReader) ReadKey() (Key, error) {
	b, err := k.r.ReadByte()
	if err != nil {
		return KeyUnknown, err
	}

	switch b {
	case ctrlC:
		return KeyInterrupt, nil
	case '\r', '\n':
		return KeyEnter, nil
	case 'k', ctrlP:
		return KeyUp, nil
	case 'j', ctrlN:
		return KeyDown, nil
	case esc:
		return k.readEscape()
	}
	return KeyUnknown, nil
}

// readEscape decodes the rest of an escape sequence. A terminal delivers a
// whole sequence in one read, so an ESC with nothing buffered behind it is the
// escape key itself.
func (k *KeyReader) readEscape() (Key, error) {
	if k.r.Buffered() == 0 {
		return KeyEscape, nil
	}

	intro, err := k.r.ReadByte()
	if err != nil {
		return KeyUnknown, err
	}
	if intro != '[' && intro != 'O' {
		return KeyUnknown, nil
	}
	if k.r.Buffered() == 0 {
		return KeyUnknown, nil
	}

	final, err := k.r.ReadByte()
	if err != nil {
		return KeyUnknown, err
	}
	// parameter bytes, e.g. ESC [ 1 ; 5 A
	for (final >= '0' && final <= '9') || final == ';' {
		if k.r.Buffered() == 0 {
			return KeyUnknown, nil
		}
		if final, err = k.r.ReadByte(); err != nil {
			return KeyUnknown, err
		}
	}

	switch final {
	case 'A':
		return KeyUp, nil
	case 'B':
		return KeyDown, nil
	}
	return KeyUnknown, nil
}
