package cmd

// Terminal key names. Printable keys decode to themselves, matching the
// player's KeyEvent naming.
const (
	keyUp     = "ArrowUp"
	keyDown   = "ArrowDown"
	keyLeft   = "ArrowLeft"
	keyRight  = "ArrowRight"
	keyEscape = "Escape"
	keyEnter  = "Enter"
	keyCtrlC  = "Ctrl+C"
)

var csiKeys = map[byte]string{
	'A': keyUp,
	'B': keyDown,
	'C': keyRight,
	'D': keyLeft,
}

// decodeKeys splits a raw-mode terminal read into key names. Unknown escape
// sequences are dropped.
func decodeKeys(buf []byte) []string {
	var keys []string
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		switch {
		case b == 0x1b:
			if i+2 < len(buf) && (buf[i+1] == '[' || buf[i+1] == 'O') {
				if name, ok := csiKeys[buf[i+2]]; ok {
					keys = append(keys, name)
					i += 2
					continue
				}
				// Skip the rest of an unknown CSI sequence up to its final byte.
				j := i + 2
				for j < len(buf) && (buf[j] < 0x40 || buf[j] > 0x7e) {
					j++
				}
				i = j
				continue
			}
			keys = append(keys, keyEscape)
		case b == 0x03:
			keys = append(keys, keyCtrlC)
		case b == '\r' || b == '\n':
			keys = append(keys, keyEnter)
		case b >= 0x20 && b < 0x7f:
			keys = append(keys, string(rune(b)))
		}
	}
	return keys
}
