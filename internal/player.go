package internal

// Member is a room's handle on a connected player. Rooms never keep a
// reference to anything else of the session.
type Member interface {
	ID() uint64
	Send(msg Message) error
}
