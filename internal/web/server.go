package web

import (
	"embed"
	"encoding/json"
	"io"
	"io/fs"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	bdnet "github.com/peterkuimelis/bladedeck/internal/net"

	"github.com/peterkuimelis/bladedeck/internal/game"
	"github.com/peterkuimelis/bladedeck/internal/session"
)

//go:embed static
var staticFiles embed.FS

// CardInfo is the JSON representation of a card for the /api/cards endpoint.
type CardInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
	Rarity      string `json:"rarity"`
	SkillKind   string `json:"skillKind,omitempty"`
	Reach       string `json:"reach,omitempty"`
	Attack      int    `json:"attack,omitempty"`
	Durability  int    `json:"durability,omitempty"`
	ManaCost    int    `json:"manaCost,omitempty"`
}

// LoadoutInfo is the JSON representation of a loadout for the /api/loadouts endpoint.
type LoadoutInfo struct {
	Number int      `json:"number"`
	Name   string   `json:"name"`
	Weapon string   `json:"weapon,omitempty"`
	Cards  []string `json:"cards"`
}

// SessionInfo summarizes a saved battle for the /api/sessions endpoint.
type SessionInfo struct {
	ID        string    `json:"id"`
	Phase     string    `json:"phase"`
	Wave      int       `json:"wave"`
	Turn      int       `json:"turn"`
	Score     int       `json:"score"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Server is the bladedeck web UI server.
type Server struct {
	content *game.Content
	manager *session.Manager
	host    *bdnet.Host
	logger  *zap.Logger
	mux     *http.ServeMux
}

// NewServer creates a new web server. Battles are played over /ws and
// saved through manager.
func NewServer(content *game.Content, manager *session.Manager, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		content: content,
		manager: manager,
		host:    &bdnet.Host{Manager: manager, Logger: logger},
		logger:  logger,
		mux:     http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Embedded static files
	staticFS, _ := fs.Sub(staticFiles, "static")

	// Serve index.html at root
	s.mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		f, err := staticFS.Open("index.html")
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer f.Close()
		io.Copy(w, f.(io.Reader))
	})

	// Static CSS/JS
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// API endpoints
	s.mux.HandleFunc("GET /api/cards", s.handleCards)
	s.mux.HandleFunc("GET /api/loadouts", s.handleLoadouts)
	s.mux.HandleFunc("GET /api/sessions", s.handleSessions)

	// Battle socket
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	cards := []CardInfo{}
	for name, c := range s.content.Cards {
		ci := CardInfo{
			Name:        name,
			Description: c.DisplayString(),
			Kind:        c.Kind.String(),
			Rarity:      c.Rarity.String(),
		}
		switch {
		case c.Weapon != nil:
			ci.Attack = c.Weapon.Attack
			ci.Reach = c.Weapon.Reach.String()
			ci.Durability = c.Weapon.Durability
		case c.Skill != nil:
			ci.SkillKind = c.Skill.Kind.String()
			ci.Reach = c.Skill.Reach.String()
			ci.ManaCost = c.Skill.ManaCost
		}
		cards = append(cards, ci)
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].Name < cards[j].Name })
	writeJSON(w, cards)
}

func (s *Server) handleLoadouts(w http.ResponseWriter, r *http.Request) {
	var loadouts []LoadoutInfo
	for i, l := range s.content.AllLoadouts() {
		li := LoadoutInfo{
			Number: i + 1,
			Name:   l.Name,
			Weapon: l.Weapon,
		}
		// Unique card names for display
		seen := make(map[string]bool)
		for _, c := range l.Cards {
			if !seen[c.Name] {
				li.Cards = append(li.Cards, c.Name)
				seen[c.Name] = true
			}
		}
		loadouts = append(loadouts, li)
	}
	writeJSON(w, loadouts)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	recs, err := s.manager.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("list sessions", zap.Error(err))
		http.Error(w, "could not list sessions", http.StatusInternalServerError)
		return
	}
	sessions := []SessionInfo{}
	for _, rec := range recs {
		sessions = append(sessions, SessionInfo{
			ID:        rec.ID,
			Phase:     rec.Phase,
			Wave:      rec.Wave,
			Turn:      rec.Turn,
			Score:     rec.Score,
			UpdatedAt: rec.UpdatedAt,
		})
	}
	writeJSON(w, sessions)
}

// handleWebSocket plays one session over the socket. ?session=<id> resumes
// a saved battle; ?loadout=<n> picks the loadout of a new one.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	join := bdnet.ClientMessage{Type: bdnet.MsgJoin, Session: r.URL.Query().Get("session")}
	if v := r.URL.Query().Get("loadout"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "loadout must be a positive integer", http.StatusBadRequest)
			return
		}
		join.Loadout = n
	}

	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		s.logger.Warn("websocket accept", zap.Error(err))
		return
	}
	defer wsConn.CloseNow()

	ctx := r.Context()
	conn := websocket.NetConn(ctx, wsConn, websocket.MessageText)
	if err := s.host.Play(ctx, conn, join); err != nil {
		s.logger.Warn("battle ended with error", zap.String("session_id", join.Session), zap.Error(err))
		wsConn.Close(websocket.StatusInternalError, "battle error")
		return
	}
	wsConn.Close(websocket.StatusNormalClosure, "battle ended")
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}
