package model

// Snapshot is one consistent read of everything a client needs to render a
// room. Observers always replace their whole local copy with a fresh snapshot
// instead of patching fields, so notification ordering never matters.
type Snapshot struct {
	Room         *Room          `json:"room"`
	Participants []*Participant `json:"participants"`
	Messages     []*Message     `json:"messages"`
}

// Participant returns the row for playerID, or nil.
func (s *Snapshot) Participant(playerID string) *Participant {
	for _, p := range s.Participants {
		if p.PlayerID == playerID {
			return p
		}
	}
	return nil
}

// HostConnected reports whether the host's row exists and is live. Session
// progression is gated on this: without the host nothing advances.
func (s *Snapshot) HostConnected() bool {
	if s.Room == nil {
		return false
	}
	host := s.Participant(s.Room.HostID)
	return host != nil && host.Connected
}
