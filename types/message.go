package types

import "github.com/google/uuid"

// Command is one list operation sent through the broker.
type Command struct {
	ID     string   `json:"id"`
	Client string   `json:"client,omitempty"`
	List   string   `json:"list"`
	Action string   `json:"action"`
	Value  string   `json:"value,omitempty"`
	Values []string `json:"values,omitempty"`
	N      int      `json:"n,omitempty"`
}

// Reply is what the server sends back for a Command.
type Reply struct {
	ID     string `json:"id"`
	List   string `json:"list"`
	Action string `json:"action"`
	Result string `json:"result,omitempty"`
	Size   int    `json:"size"`
	Error  string `json:"error,omitempty"`
}

// PushBack(), PushFront(), PopFront(), PopBack(), Remove(), Unique(), Reverse(),
// Resize(), Clear(), Assign(), Front(), Back(), Size(), Show(), Drop()
const (
	PushBack  = "PushBack"
	PushFront = "PushFront"
	PopFront  = "PopFront"
	PopBack   = "PopBack"
	Remove    = "Remove"
	Unique    = "Unique"
	Reverse   = "Reverse"
	Resize    = "Resize"
	Clear     = "Clear"
	Assign    = "Assign"
	Front     = "Front"
	Back      = "Back"
	Size      = "Size"
	Show      = "Show"
	Drop      = "Drop"
)

// EnsureID assigns a fresh UUID to c when it has none and returns the ID.
func (c *Command) EnsureID() string {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return c.ID
}
