package session

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// PresenceManager tracks each connected client's cursor and tool. Entries
// are keyed by client id: anonymous users may open several connections.
type PresenceManager struct {
	mu        sync.RWMutex
	presences map[string]*PresencePayload // clientID -> presence
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		presences: make(map[string]*PresencePayload),
	}
}

func (pm *PresenceManager) Update(clientID string, p *PresencePayload) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.presences[clientID] = p
}

// SetTool records the client's active tool, creating an entry if needed,
// and returns a copy of the updated presence.
func (pm *PresenceManager) SetTool(clientID, displayName, tool string) PresencePayload {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	p, ok := pm.presences[clientID]
	if !ok {
		p = &PresencePayload{DisplayName: displayName}
		pm.presences[clientID] = p
	}
	p.Tool = tool
	return *p
}

func (pm *PresenceManager) Remove(clientID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.presences, clientID)
}

func (pm *PresenceManager) GetAll() map[string]*PresencePayload {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	result := make(map[string]*PresencePayload, len(pm.presences))
	for k, v := range pm.presences {
		cp := *v
		result[k] = &cp
	}
	return result
}

func (pm *PresenceManager) StateMessage() *Message {
	all := pm.GetAll()
	payload, err := json.Marshal(PresenceStatePayload{Presences: all})
	if err != nil {
		slog.Error("marshal presence state", "error", err)
		return nil
	}
	return &Message{
		Type:    TypePresenceState,
		Payload: payload,
	}
}
