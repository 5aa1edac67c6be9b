// Package wire defines the JSON event messages exchanged between the game
// server and its clients over a persistent websocket connection.
package wire

// Client -> Server message types.
const (
	MsgCreateRoom   = "createRoom"
	MsgJoinRoom     = "joinRoom"
	MsgPlayerAction = "playerAction"
	MsgUpdateTimer  = "updateTimer"
	MsgPlayerMove   = "playerMove"
	MsgPlayerDone   = "playerDone"
)

// Server -> Client message types.
const (
	MsgRoomCreated = "roomCreated"
	MsgRoomJoined  = "roomJoined"
	MsgStartGame   = "startGame"
	MsgTurnChanged = "turnChanged"
	MsgGameOver    = "gameOver"
	MsgError       = "error"
)

// ClientMessage is the tagged union of everything a client may send.
// CurrentTime and TimeLeft are pointers so a missing field can be told apart
// from a legitimate zero; both are validated before admission.
type ClientMessage struct {
	Type        string `json:"type"`
	Room        string `json:"room,omitempty"`
	Action      string `json:"action,omitempty"`
	CurrentTime *int   `json:"currentTime,omitempty"`
	TimeLeft    *int   `json:"timeLeft,omitempty"`
	PlayerID    int    `json:"playerId,omitempty"`
	Letter      string `json:"letter,omitempty"`
	Answer      string `json:"answer,omitempty"`
	IsCorrect   bool   `json:"isCorrect,omitempty"`
	Score       int    `json:"score,omitempty"`
}

// ServerMessage is the tagged union of everything the server may push.
type ServerMessage struct {
	Type        string         `json:"type"`
	Room        string         `json:"room,omitempty"`
	Player      int            `json:"player,omitempty"`
	NewPlayer   int            `json:"newPlayer,omitempty"`
	InitialTime int            `json:"initialTime,omitempty"`
	Players     []string       `json:"players,omitempty"`
	CurrentTurn string         `json:"currentTurn,omitempty"`
	Timers      map[string]int `json:"timers,omitempty"`
	PlayerID    int            `json:"playerId,omitempty"`
	Letter      string         `json:"letter,omitempty"`
	Answer      string         `json:"answer,omitempty"`
	IsCorrect   bool           `json:"isCorrect,omitempty"`
	Scores      map[string]int `json:"scores,omitempty"`
	Message     string         `json:"message,omitempty"`
}
