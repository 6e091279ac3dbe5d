package chatdemo

import (
	"context"
	"time"
)

// Playback states. The player walks Idle -> Typing -> Playing(index) for
// each line, then returns to Idle (and loops when configured to).
type State string

const (
	StateIdle    State = "idle"
	StateTyping  State = "typing"
	StatePlaying State = "playing"
)

type EventType string

const (
	EventTyping  EventType = "typing"
	EventMessage EventType = "message"
	EventReset   EventType = "reset"
)

type Event struct {
	Type  EventType `json:"type"`
	Role  Role      `json:"role,omitempty"`
	Text  string    `json:"text,omitempty"`
	Index int       `json:"index"`
}

// Player replays a fixed script with per-line typing delays.
type Player struct {
	script []Line
	loop   bool
	state  State
	pos    int

	// after is swappable so tests can run without real timers
	after func(d time.Duration) <-chan time.Time
}

func NewPlayer(script []Line, loop bool) *Player {
	if len(script) == 0 {
		script = DefaultScript
	}
	return &Player{
		script: script,
		loop:   loop,
		state:  StateIdle,
		after:  time.After,
	}
}

func (p *Player) State() State {
	return p.state
}

// Run emits the scripted dialogue on the callback until the script ends (or
// forever when looping) or ctx is cancelled. Each line shows a typing event,
// waits out the line's typing delay, then emits the message.
func (p *Player) Run(ctx context.Context, emit func(Event)) error {
	for {
		for i, line := range p.script {
			p.state = StateTyping
			p.pos = i
			emit(Event{Type: EventTyping, Role: line.Role, Index: i})

			select {
			case <-ctx.Done():
				p.state = StateIdle
				return ctx.Err()
			case <-p.after(line.Typing):
			}

			p.state = StatePlaying
			emit(Event{Type: EventMessage, Role: line.Role, Text: line.Text, Index: i})
		}

		p.state = StateIdle
		p.pos = 0
		if !p.loop {
			return nil
		}
		emit(Event{Type: EventReset})

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.after(3 * time.Second):
		}
	}
}
