package protocol

import (
	"encoding/json"
	"fmt"
)

// Game identifies which variant a player plays during a match. Variants are
// assigned by the server; a player that has never been through a lobby
// assignment holds GameUnassigned.
type Game int

const (
	GameUnassigned Game = iota
	GameAsteroids
	GameMissileCommand
	GameSnake
	GameSpaceInvaders
	GameTempest
	GameTetris
)

var gameNames = map[Game]string{
	GameUnassigned:     "unassigned",
	GameAsteroids:      "asteroids",
	GameMissileCommand: "missile_command",
	GameSnake:          "snake",
	GameSpaceInvaders:  "space_invaders",
	GameTempest:        "tempest",
	GameTetris:         "tetris",
}

var gameFromName = map[string]Game{
	"unassigned":      GameUnassigned,
	"asteroids":       GameAsteroids,
	"missile_command": GameMissileCommand,
	"snake":           GameSnake,
	"space_invaders":  GameSpaceInvaders,
	"tempest":         GameTempest,
	"tetris":          GameTetris,
}

func (g Game) String() string {
	if n, ok := gameNames[g]; ok {
		return n
	}
	return "unknown"
}

func (g Game) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.String())
}

func (g *Game) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	v, ok := gameFromName[name]
	if !ok {
		return fmt.Errorf("unknown game %q", name)
	}
	*g = v
	return nil
}
