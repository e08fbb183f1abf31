package server

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/rpsplus/internal/game"
	"github.com/lox/rpsplus/internal/narrate"
)

func TestWebSocketPlaySession(t *testing.T) {
	srv := newTestServer(t, testServerOptions{script: []game.Action{game.Scissors, game.Bomb, game.Rock}})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialWS(t, ts)

	var welcome WelcomeData
	readWS(t, conn, MessageTypeWelcome, &welcome)
	assert.Equal(t, narrate.Rules, welcome.Rules)

	sendWS(t, conn, MessageTypePlay, PlayData{Input: "rock"})
	var errData ErrorData
	readWS(t, conn, MessageTypeError, &errData)
	assert.Equal(t, "no_match", errData.Code)

	sendWS(t, conn, MessageTypeNewMatch, nil)
	var started MatchStartedData
	readWS(t, conn, MessageTypeMatchStarted, &started)
	require.NotEmpty(t, started.ID)
	assert.Zero(t, started.State.RoundCount)

	sendWS(t, conn, MessageTypePlay, PlayData{Input: "   "})
	readWS(t, conn, MessageTypeError, &errData)
	assert.Equal(t, "empty_input", errData.Code)
	assert.Equal(t, narrate.EmptyInputPrompt, errData.Message)

	var result TurnResultData
	sendWS(t, conn, MessageTypePlay, PlayData{Input: "rock"})
	readWS(t, conn, MessageTypeTurnResult, &result)
	assert.Equal(t, "resolved", result.Status)
	assert.Equal(t, "PLAYER_WIN", result.Outcome)
	assert.Equal(t, started.ID, result.MatchID)

	sendWS(t, conn, MessageTypePlay, PlayData{Input: "bomb"})
	readWS(t, conn, MessageTypeTurnResult, &result)
	assert.Equal(t, "DRAW", result.Outcome)
	assert.Equal(t, "Both played bomb → Draw!", result.Explanation)

	sendWS(t, conn, MessageTypePlay, PlayData{Input: "bomb"})
	readWS(t, conn, MessageTypeTurnResult, &result)
	assert.Equal(t, "rejected", result.Status)
	require.NotNil(t, result.Error)
	assert.Equal(t, "override_already_used", result.Error.Code)

	sendWS(t, conn, MessageTypePlay, PlayData{Input: "paper"})
	readWS(t, conn, MessageTypeTurnResult, &result)
	assert.True(t, result.MatchOver)
	assert.Equal(t, "PLAYER_WIN", result.FinalResult)
	assert.Contains(t, result.Narration, "🎉 You win the game!")

	sendWS(t, conn, MessageTypeState, nil)
	var snapshot MatchStateData
	readWS(t, conn, MessageTypeMatchState, &snapshot)
	assert.Equal(t, started.ID, snapshot.ID)
	assert.True(t, snapshot.State.IsOver)
	assert.Len(t, snapshot.State.History, 3)

	sendWS(t, conn, MessageTypePlay, PlayData{Input: "rock"})
	readWS(t, conn, MessageTypeTurnResult, &result)
	assert.Equal(t, "match_over", result.Status)

	// Starting again replaces the finished match.
	sendWS(t, conn, MessageTypeNewMatch, nil)
	var again MatchStartedData
	readWS(t, conn, MessageTypeMatchStarted, &again)
	assert.NotEqual(t, started.ID, again.ID)
	_, err := srv.referee.Get(started.ID)
	assert.Error(t, err)
}

func TestWebSocketUnknownMessage(t *testing.T) {
	srv := newTestServer(t, testServerOptions{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialWS(t, ts)
	readWS(t, conn, MessageTypeWelcome, nil)

	sendWS(t, conn, MessageType("join_table"), nil)
	var errData ErrorData
	readWS(t, conn, MessageTypeError, &errData)
	assert.Equal(t, "unknown_message_type", errData.Code)
}

func TestWebSocketDisconnectDropsMatch(t *testing.T) {
	srv := newTestServer(t, testServerOptions{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialWS(t, ts)
	readWS(t, conn, MessageTypeWelcome, nil)
	sendWS(t, conn, MessageTypeNewMatch, nil)
	var started MatchStartedData
	readWS(t, conn, MessageTypeMatchStarted, &started)

	require.Eventually(t, func() bool { return srv.ConnectionCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		return srv.ConnectionCount() == 0 && srv.referee.Count() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
