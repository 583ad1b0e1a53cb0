package position

import (
	"fmt"
	"strings"
)

// Side LONG or SHORT
type Side int

const (
	LONG  Side = 1
	SHORT Side = -1
)

func (s Side) String() string {
	switch s {
	case LONG:
		return "LONG"
	case SHORT:
		return "SHORT"
	default:
		return "unknown"
	}
}

// ParseSide accepts long/short in any case.
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LONG":
		return LONG, nil
	case "SHORT":
		return SHORT, nil
	default:
		return 0, fmt.Errorf("unknown position side %q", s)
	}
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(text []byte) error {
	side, err := ParseSide(string(text))
	if err != nil {
		return err
	}
	*s = side
	return nil
}

// ========================================================

// Status Open or Closed
type Status int

const (
	StatusOpen   Status = iota // 持倉中
	StatusClosed               // 已平倉
)

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "open", "normal":
		*s = StatusOpen
	case "closed":
		*s = StatusClosed
	default:
		return fmt.Errorf("unknown position status %q", string(text))
	}
	return nil
}
