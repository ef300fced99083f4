package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/peterkuimelis/bladedeck/internal/game"
	"github.com/peterkuimelis/bladedeck/internal/session"
)

// activeSession is the singleton battle (one per stdio process).
var activeSession *GameSession

// manager starts, saves and resumes battles, set by main.
var manager *session.Manager

// logger receives operational logs, set by main.
var logger = zap.NewNop()

// SetManager sets the session manager battles are created with.
func SetManager(m *session.Manager) {
	manager = m
}

// SetLogger sets the operational logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// RegisterTools adds all battle tools to the MCP server.
func RegisterTools(s *server.MCPServer) {
	s.AddTool(startBattleTool(), handleStartBattle)
	s.AddTool(getStateTool(), handleGetState)
	s.AddTool(takeCommandTool(), handleTakeCommand)
	s.AddTool(saveBattleTool(), handleSaveBattle)
	s.AddTool(loadBattleTool(), handleLoadBattle)
	for _, ct := range commandTools {
		s.AddTool(ct.tool(), commandHandler(ct.typ))
	}
}

// --- Tool definitions ---

func startBattleTool() mcp.Tool {
	return mcp.NewTool("start_battle",
		mcp.WithDescription("Start a new battle. Returns the session ID, the initial state and the numbered list of legal commands. "+
			"Any battle already running is saved first."),
		mcp.WithNumber("loadout", mcp.Description("Loadout number (1-indexed from content.yaml, default 1)")),
	)
}

func getStateTool() mcp.Tool {
	return mcp.NewTool("get_state",
		mcp.WithDescription("Get the current battle state, accumulated events, and legal commands without acting. Read-only."),
	)
}

func takeCommandTool() mcp.Tool {
	return mcp.NewTool("take_command",
		mcp.WithDescription("Issue a command from the numbered commands list of the last response."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index into the commands list")),
	)
}

func saveBattleTool() mcp.Tool {
	return mcp.NewTool("save_battle",
		mcp.WithDescription("Save the running battle. Battles are also saved after every accepted command."),
	)
}

func loadBattleTool() mcp.Tool {
	return mcp.NewTool("load_battle",
		mcp.WithDescription("Resume a saved battle by session ID. A missing or unreadable save starts a fresh battle under that ID."),
		mcp.WithString("session", mcp.Required(), mcp.Description("Session ID returned by start_battle")),
	)
}

// commandTool is a tool that issues one kind of battle command.
type commandTool struct {
	typ    game.CommandType
	desc   string
	index  string // description of the index argument, if any
	target bool
}

var commandTools = []commandTool{
	{typ: game.CommandUseCard, desc: "Use the hand card at a position. A card that needs a target leaves the battle waiting for select_target.",
		index: "0-based hand position"},
	{typ: game.CommandSelectTarget, desc: "Choose the enemy for the card awaiting a target.", target: true},
	{typ: game.CommandCancelTargeting, desc: "Cancel the pending target choice and refund its mana."},
	{typ: game.CommandEndTurn, desc: "End the turn. Enemies act, then the next turn begins."},
	{typ: game.CommandToggleExchange, desc: "Arm or disarm the once-per-turn exchange of a hand card."},
	{typ: game.CommandChooseReward, desc: "Take a reward card after a wave.", index: "0-based reward position"},
	{typ: game.CommandSkipReward, desc: "Skip the reward cards."},
	{typ: game.CommandChoosePassive, desc: "Learn an offered passive.", index: "0-based passive choice position"},
	{typ: game.CommandNextWave, desc: "Leave the victory screen for the next wave."},
	{typ: game.CommandStartCombat, desc: "Spawn the current wave and start combat."},
	{typ: game.CommandPause, desc: "Pause the battle."},
	{typ: game.CommandResume, desc: "Resume a paused battle."},
}

func (ct commandTool) tool() mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(ct.desc)}
	if ct.index != "" {
		opts = append(opts, mcp.WithNumber("index", mcp.Required(), mcp.Description(ct.index)))
	}
	if ct.target {
		opts = append(opts, mcp.WithNumber("target", mcp.Required(), mcp.Description("Enemy ID from the state's enemies list")))
	}
	return mcp.NewTool(ct.typ.String(), opts...)
}

// --- Tool handlers ---

func noBattle() *mcp.CallToolResult {
	return mcp.NewToolResultError("No battle is running. Use start_battle or load_battle first.")
}

func handleStartBattle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if manager == nil {
		return mcp.NewToolResultError("Battles are not configured."), nil
	}
	loadout := request.GetInt("loadout", 1)
	if loadout < 1 {
		return mcp.NewToolResultError("loadout must be >= 1"), nil
	}
	return replaceSession(ctx, loadout, "")
}

func handleLoadBattle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if manager == nil {
		return mcp.NewToolResultError("Battles are not configured."), nil
	}
	id := request.GetString("session", "")
	if id == "" {
		return mcp.NewToolResultError("session is required"), nil
	}
	return replaceSession(ctx, 0, id)
}

// replaceSession saves the running battle, if any, and makes a new one
// active.
func replaceSession(ctx context.Context, loadout int, id string) (*mcp.CallToolResult, error) {
	if activeSession != nil {
		if err := activeSession.save(ctx); err != nil {
			return mcp.NewToolResultErrorf("Failed to save the running battle: %v", err), nil
		}
		activeSession = nil
	}
	sess, err := NewGameSession(ctx, manager, logger, loadout, id)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start battle: %v", err), nil
	}
	activeSession = sess

	resp := sess.respond()
	if id != "" && !sess.restored {
		resp.Message = "No usable save for this session; a fresh battle was started."
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession == nil {
		return noBattle(), nil
	}
	return mcp.NewToolResultText(respondJSON(activeSession.respond())), nil
}

func handleSaveBattle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession == nil {
		return noBattle(), nil
	}
	if err := activeSession.save(ctx); err != nil {
		return mcp.NewToolResultErrorf("Failed to save: %v", err), nil
	}
	resp := activeSession.respond()
	resp.Message = "Saved."
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func handleTakeCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession == nil {
		return noBattle(), nil
	}
	cmd, err := activeSession.command(request.GetInt("index", -1))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return execute(ctx, cmd)
}

func commandHandler(typ game.CommandType) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if activeSession == nil {
			return noBattle(), nil
		}
		return execute(ctx, game.Command{
			Type:   typ,
			Index:  request.GetInt("index", 0),
			Target: request.GetInt("target", 0),
		})
	}
}

func execute(ctx context.Context, cmd game.Command) (*mcp.CallToolResult, error) {
	resp, err := activeSession.execute(ctx, cmd)
	if err != nil {
		return mcp.NewToolResultErrorf("Rejected: %v", err), nil
	}
	if resp.GameOver {
		logger.Info("battle over", zap.String("session_id", resp.Session), zap.Int("score", resp.Score))
		activeSession = nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}
