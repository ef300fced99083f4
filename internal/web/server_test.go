package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bdnet "github.com/peterkuimelis/bladedeck/internal/net"

	"github.com/peterkuimelis/bladedeck/internal/game"
	"github.com/peterkuimelis/bladedeck/internal/session"
	"github.com/peterkuimelis/bladedeck/internal/store"
)

const testContent = `
starting_weapon: Sword
starting_deck:
  - name: Slash
    count: 6
loadouts:
  - name: Brawler
    weapon: Sword
    cards:
      - name: Slash
        count: 4
cards:
  Sword:
    kind: weapon
    weapon:
      attack: 5
      reach: single
      durability: 10
      draw_attack: {multiplier: 1, reach: single}
  Slash:
    kind: skill
    skill: {kind: attack, reach: weapon, mana_cost: 1}
enemies:
  rat:
    max_hp: 30
    actions:
      - {name: Bite, damage: 2, delay: 2}
waves:
  - enemies: [rat, rat]
`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	content, err := game.ParseContent([]byte(testContent))
	require.NoError(t, err)
	st, err := store.Open(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	m := session.NewManager(st, game.Config{Content: content, Seed: 1, NoShuffle: true}, nil)
	ts := httptest.NewServer(NewServer(content, m, nil).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, v any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestIndexAndStatic(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "<title>bladedeck</title>")

	resp, err = http.Get(ts.URL + "/static/app.js")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCardsAndLoadouts(t *testing.T) {
	ts := newTestServer(t)

	var cards []CardInfo
	getJSON(t, ts.URL+"/api/cards", &cards)
	require.Len(t, cards, 2)
	assert.Equal(t, "Slash", cards[0].Name)
	assert.Equal(t, "skill", cards[0].Kind)
	assert.Equal(t, 1, cards[0].ManaCost)
	assert.Equal(t, "Sword", cards[1].Name)
	assert.Equal(t, 5, cards[1].Attack)
	assert.Equal(t, 10, cards[1].Durability)

	var loadouts []LoadoutInfo
	getJSON(t, ts.URL+"/api/loadouts", &loadouts)
	require.Len(t, loadouts, 2)
	assert.Equal(t, 1, loadouts[0].Number)
	assert.Equal(t, "Brawler", loadouts[1].Name)
	assert.Equal(t, []string{"Slash"}, loadouts[1].Cards)
}

func TestSessionsQueryValidation(t *testing.T) {
	ts := newTestServer(t)

	var sessions []SessionInfo
	getJSON(t, ts.URL+"/api/sessions", &sessions)
	assert.Empty(t, sessions)

	resp, err := http.Get(ts.URL + "/api/sessions?limit=zero")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/ws?loadout=x")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func readUntil(t *testing.T, ctx context.Context, c *websocket.Conn, typ string) bdnet.ServerMessage {
	t.Helper()
	for {
		var msg bdnet.ServerMessage
		require.NoError(t, wsjson.Read(ctx, c, &msg))
		if msg.Type == typ {
			return msg
		}
	}
}

func TestPlayOverWebSocket(t *testing.T) {
	ts := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?loadout=2"
	c, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer c.CloseNow()

	welcome := readUntil(t, ctx, c, bdnet.MsgWelcome)
	require.NotEmpty(t, welcome.Session)
	assert.False(t, welcome.Restored)

	state := readUntil(t, ctx, c, bdnet.MsgState)
	assert.Equal(t, "running", state.State.Phase)
	assert.Equal(t, 4, state.State.Player.DeckCount, "the second loadout has four cards")

	start := game.Command{Type: game.CommandStartCombat}
	require.NoError(t, wsjson.Write(ctx, c, bdnet.ClientMessage{Type: bdnet.MsgCommand, Command: &start}))
	state = readUntil(t, ctx, c, bdnet.MsgState)
	assert.Equal(t, "combat", state.State.Phase)
	assert.Len(t, state.State.Enemies, 2)

	var sessions []SessionInfo
	getJSON(t, ts.URL+"/api/sessions", &sessions)
	require.Len(t, sessions, 1)
	assert.Equal(t, welcome.Session, sessions[0].ID)
	assert.Equal(t, "combat", sessions[0].Phase)

	require.NoError(t, wsjson.Write(ctx, c, bdnet.ClientMessage{Type: bdnet.MsgQuit}))
	c.Close(websocket.StatusNormalClosure, "")

	// Resume through the query string.
	c2, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws?session="+welcome.Session, nil)
	require.NoError(t, err)
	defer c2.CloseNow()
	welcome = readUntil(t, ctx, c2, bdnet.MsgWelcome)
	assert.True(t, welcome.Restored)
	state = readUntil(t, ctx, c2, bdnet.MsgState)
	assert.Equal(t, "combat", state.State.Phase)
}
