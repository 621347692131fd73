// Package scoring judges a finished run against the ghosts it was raced with.
package scoring

import (
	"fmt"

	"github.com/okian/ghostrun/internal/domain/model"
)

// Mode says what the player was racing against.
type Mode int

// Race modes.
const (
	ModeFirstRun Mode = iota + 1 // no personal best existed
	ModePersonal                 // racing the personal best ghost
	ModeShared                   // racing another player's ghost
)

// String returns a metric-friendly label.
func (m Mode) String() string {
	switch m {
	case ModeFirstRun:
		return "first_run"
	case ModePersonal:
		return "personal"
	case ModeShared:
		return "shared"
	default:
		return "unknown"
	}
}

// Outcome is the judgement of one finished run. NewPersonalBest and
// BeatOpponent are independent; in a shared race all four combinations occur.
type Outcome struct {
	Mode            Mode
	FinishTime      float32
	NewPersonalBest bool
	BeatOpponent    bool
	// Diff is the absolute gap to the ghost the run was compared with.
	Diff float32
}

// ShouldPersist reports whether the run must be written as the new personal best.
func (o Outcome) ShouldPersist() bool { return o.NewPersonalBest }

// Judge compares finish against the personal best and, in a shared race, the
// opponent. A nil personal best counts as beaten. Comparisons are strict, so a
// tie neither beats the opponent nor sets a new best.
func Judge(finish float32, personal, opponent *model.GhostRecording) Outcome {
	o := Outcome{FinishTime: finish}

	switch {
	case opponent != nil:
		o.Mode = ModeShared
		o.BeatOpponent = finish < opponent.TotalTime
		o.NewPersonalBest = personal == nil || finish < personal.TotalTime
		o.Diff = abs(opponent.TotalTime - finish)
	case personal == nil:
		o.Mode = ModeFirstRun
		o.NewPersonalBest = true
	default:
		o.Mode = ModePersonal
		o.NewPersonalBest = finish < personal.TotalTime
		o.BeatOpponent = o.NewPersonalBest
		o.Diff = abs(personal.TotalTime - finish)
	}
	return o
}

// Label classifies the outcome for logs and metrics.
func (o Outcome) Label() string {
	switch o.Mode {
	case ModeFirstRun:
		return "first_record"
	case ModePersonal:
		if o.NewPersonalBest {
			return "new_record"
		}
		return "ghost_wins"
	case ModeShared:
		switch {
		case o.BeatOpponent && o.NewPersonalBest:
			return "you_win_new_pb"
		case o.BeatOpponent:
			return "you_win"
		case o.NewPersonalBest:
			return "they_win_new_pb"
		default:
			return "they_win"
		}
	default:
		return "unknown"
	}
}

// Message is the text shown to the player when the race ends.
func (o Outcome) Message() string {
	switch o.Mode {
	case ModeFirstRun:
		return "GHOST RECORDED!\nTime: " + model.FormatTime(o.FinishTime)
	case ModePersonal:
		if o.NewPersonalBest {
			return "NEW RECORD!\nTime: " + model.FormatTime(o.FinishTime)
		}
		return fmt.Sprintf("GHOST WINS!\n+%.3fs", o.Diff)
	case ModeShared:
		var msg string
		if o.BeatOpponent {
			msg = fmt.Sprintf("YOU WIN!\n-%.3fs", o.Diff)
			if o.NewPersonalBest {
				msg += "\nNEW PB SAVED!"
			}
		} else {
			msg = fmt.Sprintf("THEY WIN!\n+%.3fs", o.Diff)
			if o.NewPersonalBest {
				msg += "\nBut new PB saved!"
			}
		}
		return msg
	default:
		return ""
	}
}

// CancelMessage is shown when a race is cancelled for any reason.
const CancelMessage = "GHOST RACE CANCELLED"

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
