package history

// DefaultWindow bounds how many turns a live conversation keeps in memory.
const DefaultWindow = 50

// Conversation is the in-memory, append-only view of one session.
// It is owned by a single session worker and is not safe for concurrent use.
type Conversation struct {
	turns  []Turn
	window int
}

func NewConversation(window int, turns ...Turn) *Conversation {
	if window <= 0 {
		window = DefaultWindow
	}
	c := &Conversation{window: window}
	for _, t := range turns {
		c.Append(t)
	}
	return c
}

// Append adds a turn, dropping the oldest ones past the window.
func (c *Conversation) Append(t Turn) {
	c.turns = append(c.turns, t)
	if over := len(c.turns) - c.window; over > 0 {
		c.turns = append([]Turn(nil), c.turns[over:]...)
	}
}

func (c *Conversation) Len() int {
	return len(c.turns)
}

// Turns returns a copy of the turns in chronological order.
func (c *Conversation) Turns() []Turn {
	return append([]Turn(nil), c.turns...)
}

// Last returns up to n most recent turns.
func (c *Conversation) Last(n int) []Turn {
	return Tail(c.turns, n)
}

func Tail(turns []Turn, n int) []Turn {
	if n <= 0 {
		return nil
	}
	if len(turns) <= n {
		return append([]Turn(nil), turns...)
	}
	return append([]Turn(nil), turns[len(turns)-n:]...)
}
