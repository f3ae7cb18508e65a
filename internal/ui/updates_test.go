package ui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/token-launchpad/internal/launchpad"
	"github.com/rovshanmuradov/token-launchpad/internal/wallet"
)

func TestUpdateSenderNonBlocking(t *testing.T) {
	msgChan := make(chan tea.Msg, 10)
	sender := NewUpdateSender(msgChan, zap.NewNop())
	defer sender.Close()

	for i := 0; i < 10; i++ {
		sender.SendUpdate(StageMsg{Stage: launchpad.StageRent})
	}

	start := time.Now()
	for i := 0; i < 100; i++ {
		sender.SendUpdate(StageMsg{Stage: launchpad.StageDone})
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond, "SendUpdate must not block")

	sent, dropped := sender.GetStats()
	assert.Equal(t, uint64(10), sent)
	assert.Equal(t, uint64(100), dropped)
}

func TestUpdateSenderConcurrent(t *testing.T) {
	msgChan := make(chan tea.Msg, 100)
	sender := NewUpdateSender(msgChan, zap.NewNop())
	defer sender.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				sender.SendUpdate(StageMsg{Stage: launchpad.StageConfirm})
			}
		}()
	}
	wg.Wait()

	sent, dropped := sender.GetStats()
	assert.Equal(t, uint64(1000), sent+dropped)
	assert.Equal(t, uint64(100), sent)
}

func TestBridge_ApproveRoundTrip(t *testing.T) {
	b := NewBridge(4, zaptest.NewLogger(t))
	defer b.Close()

	type outcome struct {
		ok  bool
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		ok, err := b.Approve(context.Background(), wallet.ApprovalRequest{Instructions: 2})
		done <- outcome{ok, err}
	}()

	msg := b.Listen()()
	approval, ok := msg.(ApprovalMsg)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, 2, approval.Request.Instructions)

	approval.Answer(true)
	approval.Answer(false) // ignored

	select {
	case got := <-done:
		assert.True(t, got.ok)
		assert.NoError(t, got.err)
	case <-time.After(time.Second):
		t.Fatal("Approve did not return")
	}
}

func TestBridge_ApproveCancelled(t *testing.T) {
	b := NewBridge(4, zaptest.NewLogger(t))
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	ok, err := b.Approve(ctx, wallet.ApprovalRequest{})
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// the request is still queued; answering it later must not block
	msg := b.Listen()()
	msg.(ApprovalMsg).Answer(true)
}

func TestBridge_ObserveDropsWhenFull(t *testing.T) {
	b := NewBridge(2, zaptest.NewLogger(t))
	defer b.Close()

	b.Observe(launchpad.StageRent)
	b.Observe(launchpad.StageIdentity)
	b.Observe(launchpad.StageAssemble)

	sent, dropped := b.Stats()
	assert.Equal(t, uint64(2), sent)
	assert.Equal(t, uint64(1), dropped)

	assert.Equal(t, StageMsg{Stage: launchpad.StageRent}, b.Listen()())
	assert.Equal(t, StageMsg{Stage: launchpad.StageIdentity}, b.Listen()())
}

func TestKeyMap_ContextualHelp(t *testing.T) {
	k := DefaultKeyMap()
	assert.Contains(t, k.ContextualHelp(PhaseEditing), k.Submit)
	assert.NotContains(t, k.ContextualHelp(PhaseLaunching), k.Submit)
	assert.Contains(t, k.ContextualHelp(PhaseApproval), k.Approve)
	assert.Equal(t, "approval", PhaseApproval.String())
}
