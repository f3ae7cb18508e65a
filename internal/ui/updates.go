package ui

import (
	"context"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/token-launchpad/internal/launchpad"
	"github.com/rovshanmuradov/token-launchpad/internal/wallet"
)

// UpdateSender provides non-blocking UI update sending with statistics
type UpdateSender struct {
	msgChan        chan tea.Msg
	droppedUpdates uint64
	sentUpdates    uint64
	logger         *zap.Logger
	statsInterval  time.Duration
	stopStats      chan struct{}
}

// NewUpdateSender creates a new non-blocking update sender
func NewUpdateSender(msgChan chan tea.Msg, logger *zap.Logger) *UpdateSender {
	us := &UpdateSender{
		msgChan:       msgChan,
		logger:        logger,
		statsInterval: 30 * time.Second,
		stopStats:     make(chan struct{}),
	}

	go us.logStats()

	return us
}

// SendUpdate sends a message to UI without blocking
func (us *UpdateSender) SendUpdate(msg tea.Msg) {
	select {
	case us.msgChan <- msg:
		atomic.AddUint64(&us.sentUpdates, 1)
	default:
		// прогресс не должен тормозить запуск
		atomic.AddUint64(&us.droppedUpdates, 1)
	}
}

// GetStats returns current statistics
func (us *UpdateSender) GetStats() (sent, dropped uint64) {
	sent = atomic.LoadUint64(&us.sentUpdates)
	dropped = atomic.LoadUint64(&us.droppedUpdates)
	return sent, dropped
}

func (us *UpdateSender) logStats() {
	ticker := time.NewTicker(us.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sent, dropped := us.GetStats()
			if dropped > 0 {
				us.logger.Warn("UI update statistics",
					zap.Uint64("sent", sent),
					zap.Uint64("dropped", dropped),
					zap.Float64("drop_rate", float64(dropped)/float64(sent+dropped)*100))
			}
		case <-us.stopStats:
			return
		}
	}
}

// Close stops the update sender
func (us *UpdateSender) Close() {
	close(us.stopStats)
}

// Bridge connects a launch running in a tea.Cmd goroutine with the screen:
// progress stages and approval requests travel over one channel.
type Bridge struct {
	msgChan chan tea.Msg
	sender  *UpdateSender
	logger  *zap.Logger
}

// NewBridge creates a bridge with the given channel capacity.
func NewBridge(bufferSize int, logger *zap.Logger) *Bridge {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	logger = logger.Named("ui-bridge")
	msgChan := make(chan tea.Msg, bufferSize)
	return &Bridge{
		msgChan: msgChan,
		sender:  NewUpdateSender(msgChan, logger),
		logger:  logger,
	}
}

// Observe is a launchpad.Observer. Stages are dropped when the screen lags.
func (b *Bridge) Observe(stage launchpad.Stage) {
	b.sender.SendUpdate(StageMsg{Stage: stage})
}

// Approve implements wallet.Approver. It blocks until the user answers or ctx ends.
func (b *Bridge) Approve(ctx context.Context, req wallet.ApprovalRequest) (bool, error) {
	reply := make(chan bool, 1)

	select {
	case b.msgChan <- ApprovalMsg{Request: req, reply: reply}:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	b.logger.Debug("Waiting for user approval", zap.Int("instructions", req.Instructions))

	select {
	case ok := <-reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Listen returns a tea.Cmd that waits for the next bridge message.
func (b *Bridge) Listen() tea.Cmd {
	return func() tea.Msg {
		return <-b.msgChan
	}
}

// Stats returns the number of delivered and dropped progress updates.
func (b *Bridge) Stats() (sent, dropped uint64) {
	return b.sender.GetStats()
}

func (b *Bridge) Close() {
	b.sender.Close()
}

var _ wallet.Approver = (*Bridge)(nil)
