package manifest

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
)

// Mode is a Unix permission value including the setuid, setgid and
// sticky bits (at most 07777).
//
// In JSON a number is taken as the mode bits themselves (420 is 0644) and a
// string is read as octal ("644", "0755"), which is what generators that
// think in chmod notation emit. Numbers are limited to 0777: a decimal 644
// or 755 written by mistake lands above it and is rejected instead of
// becoming 01204. Setuid, setgid and sticky need the string form.
type Mode uint32

const (
	maxMode    = 0o7777
	maxNumMode = 0o777
)

// ParseMode reads an octal mode string.
func ParseMode(s string) (Mode, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "0o")
	v, err := strconv.ParseUint(trimmed, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid octal mode %q", s)
	}
	if v > maxMode {
		return 0, fmt.Errorf("mode %q out of range", s)
	}
	return Mode(v), nil
}

// UnmarshalJSON accepts a number or an octal string.
func (m *Mode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := ParseMode(s)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	}

	var n uint32
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("permissions must be a number or an octal string, got %s", data)
	}
	if n > maxNumMode {
		return fmt.Errorf("numeric mode %d is above 0777 (511); write it as an octal string such as \"%d\"", n, n)
	}
	*m = Mode(n)
	return nil
}

// MarshalJSON writes the mode as a number, or as an octal string when
// special bits are set so it reads back.
func (m Mode) MarshalJSON() ([]byte, error) {
	if m > maxNumMode {
		return json.Marshal(m.String())
	}
	return json.Marshal(uint32(m))
}

// MarshalYAML writes the mode in octal, the way people read it.
func (m Mode) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

// String formats the mode in octal, e.g. "0644".
func (m Mode) String() string {
	return fmt.Sprintf("%04o", uint32(m))
}

// FileMode converts to the os package representation.
func (m Mode) FileMode() fs.FileMode {
	mode := fs.FileMode(m) & fs.ModePerm
	if m&0o4000 != 0 {
		mode |= fs.ModeSetuid
	}
	if m&0o2000 != 0 {
		mode |= fs.ModeSetgid
	}
	if m&0o1000 != 0 {
		mode |= fs.ModeSticky
	}
	return mode
}

// ModeOf extracts the Unix permission value from an os file mode.
func ModeOf(fm fs.FileMode) Mode {
	mode := Mode(fm & fs.ModePerm)
	if fm&fs.ModeSetuid != 0 {
		mode |= 0o4000
	}
	if fm&fs.ModeSetgid != 0 {
		mode |= 0o2000
	}
	if fm&fs.ModeSticky != 0 {
		mode |= 0o1000
	}
	return mode
}
