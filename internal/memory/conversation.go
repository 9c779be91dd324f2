package memory

import (
	"encoding/json"
	"fmt"

	"github.com/mrz1836/forge/internal/domain"
)

// AddConversation appends an entry to the conversation log. The log is not
// capped. Metadata is kept in its JSON form, so numbers are float64 both
// before and after a save/load cycle.
func (s *Store) AddConversation(role, content string, metadata map[string]any) {
	md := jsonMetadata(metadata)

	s.mu.Lock()
	s.conversation = append(s.conversation, domain.ConversationEntry{
		Timestamp: s.now(),
		Role:      role,
		Content:   content,
		Metadata:  md,
	})
	s.touch()
	s.mu.Unlock()
}

// Conversation returns a copy of the full log in order.
func (s *Store) Conversation() []domain.ConversationEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ConversationEntry, len(s.conversation))
	copy(out, s.conversation)
	return out
}

// RecentConversation returns up to n of the latest entries, oldest first.
func (s *Store) RecentConversation(n int) []domain.ConversationEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recentLocked(n)
}

func (s *Store) recentLocked(n int) []domain.ConversationEntry {
	if n <= 0 || len(s.conversation) == 0 {
		return nil
	}
	start := max(len(s.conversation)-n, 0)
	out := make([]domain.ConversationEntry, len(s.conversation)-start)
	copy(out, s.conversation[start:])
	return out
}

// jsonMetadata returns metadata as it reads back from a snapshot. Values that
// cannot be encoded are kept as their printed form.
func jsonMetadata(metadata map[string]any) map[string]any {
	md := make(map[string]any, len(metadata))
	for k, v := range metadata {
		data, err := json.Marshal(v)
		if err != nil {
			md[k] = fmt.Sprint(v)
			continue
		}
		var decoded any
		if err := json.Unmarshal(data, &decoded); err != nil {
			md[k] = fmt.Sprint(v)
			continue
		}
		md[k] = decoded
	}
	return md
}
