// FILE: internal/core/api.go
package core

// Request types

type CreateGameRequest struct {
	White PlayerConfig `json:"white" validate:"required"`
	Black PlayerConfig `json:"black" validate:"required"`
}

type ConfigurePlayersRequest struct {
	White PlayerConfig `json:"white" validate:"required"`
	Black PlayerConfig `json:"black" validate:"required"`
}

type MoveRequest struct {
	Move string `json:"move" validate:"required,min=4,max=5"` // "cccc" for computer move, 4-5 chars for UCI moves
}

type UndoRequest struct {
	Count int `json:"count" validate:"required,min=1,max=300"`
}

// Response types

type GameResponse struct {
	GameID   string          `json:"gameId"`
	Turn     string          `json:"turn"`  // "w" or "b"
	State    string          `json:"state"` // "ongoing", "white wins", etc
	InCheck  bool            `json:"inCheck"`
	Moves    []string        `json:"moves"`   // UCI
	History  []string        `json:"history"` // algebraic
	Players  PlayersResponse `json:"players"`
	LastMove *MoveInfo       `json:"lastMove,omitempty"`
}

type MoveInfo struct {
	Move        string `json:"move"`
	Notation    string `json:"notation,omitempty"`
	PlayerColor string `json:"playerColor"` // "w" or "b"
	Score       int    `json:"score,omitempty"`
	Depth       int    `json:"depth,omitempty"`
	Fallback    bool   `json:"fallback,omitempty"` // Random move replaced an empty engine answer
}

type BoardResponse struct {
	Board string `json:"board"` // ASCII representation
	Turn  string `json:"turn"`
}

type LegalMovesResponse struct {
	GameID string   `json:"gameId"`
	Moves  []string `json:"moves"`    // UCI
	SAN    []string `json:"notation"` // algebraic, same order
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
