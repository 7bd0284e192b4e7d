// Package chat retains a bounded per-room log of emitted messages so late
// joiners can request recent history.
package chat

// DefaultHistoryLimit is the number of messages retained and served per room.
const DefaultHistoryLimit = 50

// roomLog is a fixed-capacity ring over the most recent messages for one
// room. total counts every append, including entries the ring has evicted.
type roomLog struct {
	buf   []Message
	start int
	total int
}

// historyStore holds one roomLog per room. Rooms come into existence on first
// append and are never deleted; the ring bounds their memory.
type historyStore struct {
	limit int
	rooms map[string]*roomLog
}

func newHistoryStore(limit int) *historyStore {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &historyStore{limit: limit, rooms: make(map[string]*roomLog)}
}

// append records m in its room's log, evicting the oldest retained entry once
// the ring is full.
func (s *historyStore) append(m Message) {
	l := s.rooms[m.Room]
	if l == nil {
		l = &roomLog{}
		s.rooms[m.Room] = l
	}
	if len(l.buf) < s.limit {
		l.buf = append(l.buf, m)
	} else {
		l.buf[l.start] = m
		l.start = (l.start + 1) % s.limit
	}
	l.total++
}

// recent returns the retained messages for room in chronological order along
// with the total number ever appended there.
func (s *historyStore) recent(room string) ([]Message, int) {
	l := s.rooms[room]
	if l == nil {
		return []Message{}, 0
	}
	out := make([]Message, 0, len(l.buf))
	for i := 0; i < len(l.buf); i++ {
		out = append(out, l.buf[(l.start+i)%len(l.buf)])
	}
	return out, l.total
}
