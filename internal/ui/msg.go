package ui

import (
	"time"

	"github.com/rovshanmuradov/token-launchpad/internal/launchpad"
	"github.com/rovshanmuradov/token-launchpad/internal/wallet"
)

// Tea message types for UI communication

// StageMsg reports launch progress.
type StageMsg struct {
	Stage launchpad.Stage
}

// ApprovalMsg asks the user to approve the wallet signature.
type ApprovalMsg struct {
	Request wallet.ApprovalRequest
	reply   chan<- bool
}

// Answer replies to the waiting wallet. Only the first answer counts.
func (m ApprovalMsg) Answer(ok bool) {
	select {
	case m.reply <- ok:
	default:
	}
}

// LaunchDoneMsg carries the outcome of one CreateToken call.
type LaunchDoneMsg struct {
	Request launchpad.MintRequest
	Result  *launchpad.ConfirmationResult
	Err     error
	Elapsed time.Duration
}

// LogTickMsg refreshes the log panel.
type LogTickMsg time.Time

// Phase is the state of the launch screen.
type Phase int

const (
	PhaseEditing Phase = iota
	PhaseLaunching
	PhaseApproval
	PhaseDone
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseEditing:
		return "editing"
	case PhaseLaunching:
		return "launching"
	case PhaseApproval:
		return "approval"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}
