package booking

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSMessage struct {
	Type    string `json:"type"`
	PlaceID string `json:"place_id"`
	UnitID  string `json:"unit_id,omitempty"`
}

// Watchers tracks sockets waiting for availability changes of a place.
type Watchers struct {
	mu          sync.Mutex
	subscribers map[string][]*websocket.Conn
}

func NewWatchers() *Watchers {
	return &Watchers{subscribers: make(map[string][]*websocket.Conn)}
}

// GET /ws/availability/:placeid
func (wt *Watchers) HandleWS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	key := ps.ByName("placeid")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	wt.mu.Lock()
	wt.subscribers[key] = append(wt.subscribers[key], conn)
	wt.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	wt.mu.Lock()
	conns := wt.subscribers[key]
	kept := make([]*websocket.Conn, 0, len(conns))
	for _, c := range conns {
		if c != conn {
			kept = append(kept, c)
		}
	}
	wt.subscribers[key] = kept
	wt.mu.Unlock()

	conn.Close()
}

// Count reports the live watchers of a place.
func (wt *Watchers) Count(placeID string) int {
	wt.mu.Lock()
	defer wt.mu.Unlock()
	return len(wt.subscribers[placeID])
}

// broadcastUpdate tells watchers of placeID to refetch availability.
func (wt *Watchers) broadcastUpdate(placeID, unitID string) {
	if wt == nil {
		return
	}
	data, _ := json.Marshal(WSMessage{Type: "update", PlaceID: placeID, UnitID: unitID})

	wt.mu.Lock()
	defer wt.mu.Unlock()

	conns := wt.subscribers[placeID]
	kept := conns[:0]
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err == nil {
			kept = append(kept, conn)
		} else {
			conn.Close()
		}
	}
	wt.subscribers[placeID] = kept
}
