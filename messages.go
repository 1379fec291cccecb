/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Seednode/partyhost/games"
	"github.com/Seednode/partyhost/games/room"
)

// Client events
const (
	evCreateRoom         = "create-room"
	evJoinRoom           = "join-room"
	evSelectGame         = "select-game"
	evUpdateQuizSettings = "update-quiz-settings"
	evConfirmConfig      = "confirm-config"
	evQuizStart          = "quiz-start"
	evQuizSubmitAnswer   = "quiz-submit-answer"
	evQuizNextQuestion   = "quiz-next-question"
	evQuizGetQuestion    = "quiz-get-question"
	evSpyStartGame       = "spy-start-game"
	evSpyStartDiscussion = "spy-start-discussion"
	evSpyStartVoting     = "spy-start-voting"
	evSpySubmitVote      = "spy-submit-vote"
	evSpyProcessVotes    = "spy-process-votes"
	evSpyNextRound       = "spy-next-round"
	evSpyChangeLanguage  = "spy-change-language"
	evControllerInput    = "controller-input"
	evHostStartGame      = "host-start-game"
	evHostGameState      = "host-game-state"
	evHostEndGame        = "host-end-game"
	evPing               = "ping"
)

// Server events
const (
	evAck                 = "ack"
	evRoomClosed          = "room-closed"
	evPlayerJoined        = "player-joined"
	evPlayerLeft          = "player-left"
	evStateChanged        = "state-changed"
	evQuizSettingsUpdated = "quiz-settings-updated"
	evConfigReady         = "config-ready"
	evQuizStarted         = "quiz-started"
	evQuizAnswerSubmitted = "quiz-answer-submitted"
	evQuizNewQuestion     = "quiz-new-question"
	evQuizFinished        = "quiz-finished"
	evSpyAssignment       = "spy-assignment"
	evSpyGameStarted      = "spy-game-started"
	evSpyPhaseChanged     = "spy-phase-changed"
	evSpyVotingStarted    = "spy-voting-started"
	evSpyVoteUpdate       = "spy-vote-update"
	evSpyGameResult       = "spy-game-result"
	evSpyLanguageChanged  = "spy-language-changed"
	evGameInput           = "game-input"
	evGameStarted         = "game-started"
	evGameStateUpdate     = "game-state-update"
	evGameEnded           = "game-ended"
)

// ClientMessage is one inbound frame. ID is echoed back on the ack.
type ClientMessage struct {
	ID   int64           `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ServerMessage is one outbound frame. ID is only set on acks.
type ServerMessage struct {
	Type string `json:"type"`
	ID   *int64 `json:"id,omitempty"`
	Data any    `json:"data"`
}

type payload map[string]any

func event(name string, data any) ServerMessage {
	return ServerMessage{Type: name, Data: data}
}

func ackMessage(id int64, data payload) ServerMessage {
	return ServerMessage{Type: evAck, ID: &id, Data: data}
}

func success(fields payload) payload {
	out := payload{"success": true}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func failure(err error) payload {
	return payload{
		"success": false,
		"error":   err.Error(),
		"code":    games.Code(err),
	}
}

// Request payloads. Fields a handler does not read are ignored.

type roomRequest struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

type joinRoomRequest struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type selectGameRequest struct {
	roomRequest
	GameType string `json:"gameType"`
}

type quizSettingsRequest struct {
	roomRequest
	Settings room.SettingsUpdate `json:"settings"`
}

type answerRequest struct {
	roomRequest
	AnswerLetter string `json:"answerLetter"`
	AnswerIndex  *int   `json:"answerIndex"`
}

// index maps "A".."D" onto 0..3. Any other letter lands out of range and is
// scored as wrong rather than rejected.
func (r answerRequest) index() (int, error) {
	letter := strings.ToUpper(strings.TrimSpace(r.AnswerLetter))
	switch {
	case len(letter) == 1 && letter[0] >= 'A' && letter[0] <= 'Z':
		return int(letter[0] - 'A'), nil
	case letter == "" && r.AnswerIndex != nil:
		return *r.AnswerIndex, nil
	default:
		return 0, fmt.Errorf("%w: answer must be a single letter", games.ErrValidation)
	}
}

type spyStartRequest struct {
	roomRequest
	Language string `json:"language"`
}

type voteRequest struct {
	roomRequest
	VotedForID string `json:"votedForId"`
}

// Hosted games carry opaque JSON that only the host screen understands.

type controllerInputRequest struct {
	roomRequest
	Input json.RawMessage `json:"input"`
}

type hostStartRequest struct {
	roomRequest
	GameName string `json:"gameName"`
}

type gameStateRequest struct {
	roomRequest
	State json.RawMessage `json:"state"`
}

type endGameRequest struct {
	roomRequest
	FinalScores map[string]int `json:"finalScores"`
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: malformed payload: %v", games.ErrValidation, err)
	}
	return nil
}
