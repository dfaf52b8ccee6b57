package state

import (
	"encoding/json"
	"fmt"
)

// Status tracks the lifecycle of an async store operation.
type Status int

const (
	Idle Status = iota
	Loading
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw {
	case "idle":
		*s = Idle
	case "loading":
		*s = Loading
	case "succeeded":
		*s = Succeeded
	case "failed":
		*s = Failed
	default:
		return fmt.Errorf("unknown status %q", raw)
	}
	return nil
}
