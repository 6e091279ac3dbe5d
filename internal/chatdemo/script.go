package chatdemo

import "time"

type Role string

const (
	RoleVisitor Role = "visitor"
	RoleBot     Role = "bot"
)

// Line is one canned message in the demo dialogue. Typing is how long the
// "agent is typing" indicator shows before the line appears.
type Line struct {
	Role   Role
	Text   string
	Typing time.Duration
}

// DefaultScript is the fixture dialogue played back on the marketing page.
// It is decorative; the portal never generates replies.
var DefaultScript = []Line{
	{Role: RoleVisitor, Text: "Hi! Is the 2-bedroom on Maple Street still available?", Typing: 900 * time.Millisecond},
	{Role: RoleBot, Text: "It is! The unit at 48 Maple St rents for $2,150/mo and is available from the 1st. Want to see it?", Typing: 1400 * time.Millisecond},
	{Role: RoleVisitor, Text: "Yes, could I tour it this Saturday?", Typing: 1000 * time.Millisecond},
	{Role: RoleBot, Text: "Saturday works. I have 10:30am and 2:00pm open — which do you prefer?", Typing: 1200 * time.Millisecond},
	{Role: RoleVisitor, Text: "10:30 please. Do you allow cats?", Typing: 900 * time.Millisecond},
	{Role: RoleBot, Text: "Cats are welcome with a $250 deposit. You're booked for Saturday 10:30am — I've emailed you the details!", Typing: 1500 * time.Millisecond},
}
