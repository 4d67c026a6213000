package protocol

import (
	"encoding/json"
	"fmt"
)

// Status is a player's place in the match lifecycle.
type Status int

const (
	StatusLobby Status = iota
	StatusPlaying
	StatusDead
)

var statusNames = map[Status]string{
	StatusLobby:   "lobby",
	StatusPlaying: "playing",
	StatusDead:    "dead",
}

var statusFromName = map[string]Status{
	"lobby":   StatusLobby,
	"playing": StatusPlaying,
	"dead":    StatusDead,
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "unknown"
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON rejects names outside the lifecycle so a frame carrying a
// status this build doesn't know fails decoding instead of smuggling in a
// zero value.
func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	v, ok := statusFromName[name]
	if !ok {
		return fmt.Errorf("unknown status %q", name)
	}
	*s = v
	return nil
}
