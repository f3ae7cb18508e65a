package component

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/token-launchpad/internal/ui/style"
)

// RPCStatus represents the RPC node checked at start-up
type RPCStatus struct {
	Connected bool
	Version   string
	Latency   time.Duration
}

// StatusHeader shows the wallet, the RPC node and the launches of this session.
type StatusHeader struct {
	wallet    string
	rpcStatus RPCStatus
	launched  int
	failed    int
	width     int

	container lipgloss.Style
	title     lipgloss.Style
	walletSt  lipgloss.Style
	good      lipgloss.Style
	bad       lipgloss.Style
	muted     lipgloss.Style
}

// NewStatusHeader creates a new status header component
func NewStatusHeader() *StatusHeader {
	palette := style.DefaultPalette()

	return &StatusHeader{
		wallet: "not connected",

		container: lipgloss.NewStyle().
			Foreground(palette.Text).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary).
			Padding(0, 2),
		title:    lipgloss.NewStyle().Foreground(palette.Primary).Bold(true),
		walletSt: lipgloss.NewStyle().Foreground(palette.TextSecondary),
		good:     lipgloss.NewStyle().Foreground(palette.Success).Bold(true),
		bad:      lipgloss.NewStyle().Foreground(palette.Error).Bold(true),
		muted:    lipgloss.NewStyle().Foreground(palette.TextMuted),
	}
}

// SetWallet updates the wallet address display
func (sh *StatusHeader) SetWallet(wallet string) {
	if len(wallet) > 12 {
		sh.wallet = wallet[:4] + "..." + wallet[len(wallet)-4:]
		return
	}
	sh.wallet = wallet
}

// SetRPCStatus updates the RPC connection status
func (sh *StatusHeader) SetRPCStatus(status RPCStatus) {
	sh.rpcStatus = status
}

// RecordLaunch counts a finished launch.
func (sh *StatusHeader) RecordLaunch(ok bool) {
	if ok {
		sh.launched++
	} else {
		sh.failed++
	}
}

// SetWidth sets the component width for responsive layout
func (sh *StatusHeader) SetWidth(width int) {
	sh.width = width
	sh.container = sh.container.Width(width - 4)
}

// View renders the status header
func (sh *StatusHeader) View() string {
	content := lipgloss.JoinHorizontal(
		lipgloss.Left,
		sh.title.Render("Token Launchpad"),
		" | ",
		sh.walletSt.Render(fmt.Sprintf("Wallet: %s", sh.wallet)),
		" | ",
		sh.renderRPCStatus(),
		" | ",
		sh.muted.Render(fmt.Sprintf("Launched: %d  Failed: %d", sh.launched, sh.failed)),
	)
	return sh.container.Render(content)
}

func (sh *StatusHeader) renderRPCStatus() string {
	if !sh.rpcStatus.Connected {
		return sh.bad.Render("🔴 RPC: unreachable")
	}
	status := fmt.Sprintf("🟢 RPC: %s (%dms)", sh.rpcStatus.Version, sh.rpcStatus.Latency.Milliseconds())
	return sh.good.Render(status)
}
