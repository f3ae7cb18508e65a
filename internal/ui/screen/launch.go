package screen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/token-launchpad/internal/journal"
	"github.com/rovshanmuradov/token-launchpad/internal/launchpad"
	"github.com/rovshanmuradov/token-launchpad/internal/logger"
	"github.com/rovshanmuradov/token-launchpad/internal/ui"
	"github.com/rovshanmuradov/token-launchpad/internal/ui/component"
	"github.com/rovshanmuradov/token-launchpad/internal/ui/style"
)

const (
	fieldName   = "name"
	fieldSymbol = "symbol"
	fieldImage  = "image_url"
	fieldSupply = "initial_supply"

	logTickInterval = 500 * time.Millisecond
)

// Recorder stores launch outcomes.
type Recorder interface {
	Append(journal.Record) error
}

// Deps are the collaborators of the launch screen.
type Deps struct {
	Context  context.Context
	Launcher launchpad.Launcher
	Wallet   launchpad.WalletSession
	Ledger   launchpad.LedgerClient
	Bridge   *ui.Bridge
	Logs     *logger.LogBuffer
	Journal  Recorder
	Logger   *zap.Logger
	RPC      component.RPCStatus
	// LaunchTimeout bounds a whole launch including the wallet prompt. Zero means no bound.
	LaunchTimeout time.Duration
}

var stageLabels = []struct {
	stage launchpad.Stage
	label string
}{
	{launchpad.StageRent, "Fetching rent-exempt balance"},
	{launchpad.StageIdentity, "Generating mint key"},
	{launchpad.StageAssemble, "Building transaction"},
	{launchpad.StageBlockhash, "Fetching recent blockhash"},
	{launchpad.StageSign, "Signing with mint key"},
	{launchpad.StageWallet, "Waiting for wallet"},
	{launchpad.StageConfirm, "Confirming"},
	{launchpad.StageDone, "Done"},
}

// LaunchScreen is the token launch form with progress and result.
type LaunchScreen struct {
	deps   Deps
	keyMap ui.KeyMap
	logger *zap.Logger

	form    *component.Form
	header  *component.StatusHeader
	logs    *component.CompactLogViewer
	helpBar *component.HelpBar

	phase    ui.Phase
	inFlight bool
	cancel   context.CancelFunc
	reached  map[launchpad.Stage]bool
	approval *ui.ApprovalMsg
	request  launchpad.MintRequest
	result   *launchpad.ConfirmationResult
	err      error
	elapsed  time.Duration

	width  int
	height int

	titleStyle   lipgloss.Style
	buttonStyle  lipgloss.Style
	busyStyle    lipgloss.Style
	boxStyle     lipgloss.Style
	successStyle lipgloss.Style
	errorStyle   lipgloss.Style
	mutedStyle   lipgloss.Style
	doneStyle    lipgloss.Style
}

// NewLaunchScreen creates the launch screen.
func NewLaunchScreen(deps Deps) *LaunchScreen {
	if deps.Context == nil {
		deps.Context = context.Background()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	palette := style.DefaultPalette()

	s := &LaunchScreen{
		deps:    deps,
		keyMap:  ui.DefaultKeyMap(),
		logger:  deps.Logger.Named("launch-screen"),
		header:  component.NewStatusHeader(),
		logs:    component.NewCompactLogViewer(deps.Logs),
		helpBar: component.NewHelpBar(),
		reached: make(map[launchpad.Stage]bool),

		titleStyle: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true).
			Margin(1, 0),
		buttonStyle: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Secondary).
			Bold(true).
			Padding(0, 3),
		busyStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Background(palette.BackgroundAlt).
			Padding(0, 3),
		boxStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Accent).
			Padding(0, 2).
			MarginTop(1),
		successStyle: lipgloss.NewStyle().Foreground(palette.Success).Bold(true),
		errorStyle:   lipgloss.NewStyle().Foreground(palette.Error).Bold(true),
		mutedStyle:   lipgloss.NewStyle().Foreground(palette.TextMuted),
		doneStyle:    lipgloss.NewStyle().Foreground(palette.Success),
	}

	s.form = component.NewForm().
		AddField(fieldName, component.FieldTypeText, "Name", false, "Rocket").
		AddField(fieldSymbol, component.FieldTypeText, "Symbol", false, "RKT").
		AddField(fieldImage, component.FieldTypeText, "Image URL", false, "https://...").
		AddField(fieldSupply, component.FieldTypeNumber, "Initial Supply", false, "1000000").
		SetFieldValidation(fieldSupply, func(v string) error {
			_, err := launchpad.ParseInitialSupply(v, launchpad.MintDecimals)
			return err
		})

	if deps.Wallet != nil && deps.Wallet.Connected() {
		s.header.SetWallet(deps.Wallet.PublicAddress().String())
	}
	s.header.SetRPCStatus(deps.RPC)
	return s
}

// Init starts listening to the bridge and the log ticker.
func (s *LaunchScreen) Init() tea.Cmd {
	var cmds []tea.Cmd
	if s.deps.Bridge != nil {
		cmds = append(cmds, s.deps.Bridge.Listen())
	}
	cmds = append(cmds, logTick())
	return tea.Batch(cmds...)
}

func logTick() tea.Cmd {
	return tea.Tick(logTickInterval, func(t time.Time) tea.Msg { return ui.LogTickMsg(t) })
}

func (s *LaunchScreen) listen() tea.Cmd {
	if s.deps.Bridge == nil {
		return nil
	}
	return s.deps.Bridge.Listen()
}

// Update handles screen updates
func (s *LaunchScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.setSize(msg.Width, msg.Height)
		return s, nil

	case ui.LogTickMsg:
		return s, logTick()

	case ui.StageMsg:
		s.reached[msg.Stage] = true
		return s, s.listen()

	case ui.ApprovalMsg:
		if !s.inFlight {
			// запрос от уже отменённого запуска
			msg.Answer(false)
			return s, s.listen()
		}
		s.approval = &msg
		s.phase = ui.PhaseApproval
		return s, s.listen()

	case ui.LaunchDoneMsg:
		s.finish(msg)
		return s, nil

	case component.SubmitMsg:
		return s, s.submit()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	return s, nil
}

func (s *LaunchScreen) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, s.keyMap.Quit) {
		s.shutdown()
		return s, tea.Quit
	}

	if s.phase == ui.PhaseApproval {
		switch {
		case key.Matches(msg, s.keyMap.Approve):
			s.answer(true)
		case key.Matches(msg, s.keyMap.Decline):
			s.answer(false)
		}
		return s, nil
	}

	switch {
	case key.Matches(msg, s.keyMap.ToggleLogs):
		s.logs.ToggleVisible()
		return s, nil

	case key.Matches(msg, s.keyMap.Submit):
		return s, s.submit()

	case key.Matches(msg, s.keyMap.NewLaunch):
		if !s.inFlight {
			s.form.Reset()
			s.clearOutcome()
		}
		return s, nil

	case s.phase == ui.PhaseDone && key.Matches(msg, s.keyMap.Back):
		s.clearOutcome()
		return s, nil
	}

	if s.inFlight {
		return s, nil
	}
	var cmd tea.Cmd
	s.form, cmd = s.form.Update(msg)
	return s, cmd
}

// submit starts a launch unless one is already running.
func (s *LaunchScreen) submit() tea.Cmd {
	if s.inFlight {
		s.logger.Debug("Submit ignored, launch in flight")
		return nil
	}
	if !s.form.Validate() {
		return nil
	}

	req := launchpad.MintRequest{
		Name:          strings.TrimSpace(s.form.GetValue(fieldName)),
		Symbol:        strings.TrimSpace(s.form.GetValue(fieldSymbol)),
		ImageURL:      strings.TrimSpace(s.form.GetValue(fieldImage)),
		InitialSupply: strings.TrimSpace(s.form.GetValue(fieldSupply)),
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if s.deps.LaunchTimeout > 0 {
		ctx, cancel = context.WithTimeout(s.deps.Context, s.deps.LaunchTimeout)
	} else {
		ctx, cancel = context.WithCancel(s.deps.Context)
	}

	s.clearOutcome()
	s.inFlight = true
	s.cancel = cancel
	s.request = req
	s.phase = ui.PhaseLaunching
	s.form.SetDisabled(true)

	launcher, session, ledger := s.deps.Launcher, s.deps.Wallet, s.deps.Ledger
	s.logger.Info("Launch submitted", zap.String("name", req.Name), zap.String("symbol", req.Symbol))

	return func() tea.Msg {
		defer cancel()
		start := time.Now()
		res, err := launcher.CreateToken(ctx, req, session, ledger)
		return ui.LaunchDoneMsg{Request: req, Result: res, Err: err, Elapsed: time.Since(start)}
	}
}

func (s *LaunchScreen) finish(msg ui.LaunchDoneMsg) {
	s.inFlight = false
	s.cancel = nil
	s.approval = nil
	s.phase = ui.PhaseDone
	s.result = msg.Result
	s.err = msg.Err
	s.elapsed = msg.Elapsed
	s.form.SetDisabled(false)

	ok := msg.Err == nil && msg.Result != nil && msg.Result.Status == launchpad.StatusConfirmed
	s.header.RecordLaunch(ok)

	if s.deps.Journal != nil {
		wallet := ""
		if s.deps.Wallet != nil {
			wallet = s.deps.Wallet.PublicAddress().String()
		}
		if err := s.deps.Journal.Append(journal.NewRecord(msg.Request, wallet, msg.Result, msg.Err)); err != nil {
			s.logger.Warn("Failed to record launch", zap.Error(err))
		}
	}
}

func (s *LaunchScreen) answer(ok bool) {
	if s.approval != nil {
		s.approval.Answer(ok)
	}
	s.approval = nil
	s.phase = ui.PhaseLaunching
}

func (s *LaunchScreen) shutdown() {
	if s.approval != nil {
		s.approval.Answer(false)
		s.approval = nil
	}
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *LaunchScreen) clearOutcome() {
	s.result = nil
	s.err = nil
	s.elapsed = 0
	s.reached = make(map[launchpad.Stage]bool)
	if !s.inFlight {
		s.phase = ui.PhaseEditing
	}
}

func (s *LaunchScreen) setSize(width, height int) {
	s.width = width
	s.height = height
	s.header.SetWidth(width)
	s.form.SetWidth(min(width-4, 64))
	s.helpBar.SetWidth(width)
	logHeight := height / 4
	if logHeight < 5 {
		logHeight = 5
	}
	s.logs.SetSize(width, logHeight)
}

// Phase returns the current screen phase.
func (s *LaunchScreen) Phase() ui.Phase { return s.phase }

// InFlight reports whether a launch is running.
func (s *LaunchScreen) InFlight() bool { return s.inFlight }

// Outcome returns the last launch result and error.
func (s *LaunchScreen) Outcome() (*launchpad.ConfirmationResult, error) { return s.result, s.err }

// View renders the screen
func (s *LaunchScreen) View() string {
	sections := []string{
		s.header.View(),
		s.titleStyle.Render("🚀 Create a new token"),
		s.form.View(),
		s.renderButton(),
	}

	if s.phase != ui.PhaseEditing {
		sections = append(sections, s.renderProgress())
	}
	if s.approval != nil {
		sections = append(sections, s.renderApproval())
	}
	if s.phase == ui.PhaseDone {
		sections = append(sections, s.renderOutcome())
	}
	if s.logs.IsVisible() {
		sections = append(sections, s.logs.View())
	}

	s.helpBar.SetKeyBindings(s.keyMap.ContextualHelp(s.phase))
	sections = append(sections, s.helpBar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (s *LaunchScreen) renderButton() string {
	if s.inFlight {
		return s.busyStyle.Render("Launching...")
	}
	return s.buttonStyle.Render("Launch Token") + s.mutedStyle.Render("  ctrl+s")
}

func (s *LaunchScreen) renderProgress() string {
	var b strings.Builder
	for _, st := range stageLabels {
		switch {
		case s.reached[st.stage]:
			b.WriteString(s.doneStyle.Render("✓ " + st.label))
		default:
			b.WriteString(s.mutedStyle.Render("· " + st.label))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *LaunchScreen) renderApproval() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		s.titleStyle.UnsetMargins().Render("Wallet approval required"),
		s.approval.Request.Summary(),
		"",
		"Approve and sign? [y/N]",
	)
	return s.boxStyle.Render(content)
}

func (s *LaunchScreen) renderOutcome() string {
	var lines []string
	switch {
	case s.err == nil && s.result != nil:
		lines = append(lines,
			s.successStyle.Render("🎉 Token launched"),
			"Mint:      "+s.result.Mint.String(),
			"Signature: "+s.result.Signature.String(),
		)
	case s.err != nil:
		lines = append(lines,
			s.errorStyle.Render("✗ "+describeError(s.err)),
			s.mutedStyle.Render(s.err.Error()),
		)
		if s.result != nil && !s.result.Mint.IsZero() {
			lines = append(lines,
				"Mint:      "+s.result.Mint.String(),
				"Signature: "+s.result.Signature.String(),
			)
		}
	}
	if s.elapsed > 0 {
		lines = append(lines, s.mutedStyle.Render(fmt.Sprintf("took %s", s.elapsed.Round(time.Millisecond))))
	}
	return s.boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// describeError turns a launch error into a short message for the user.
func describeError(err error) string {
	switch {
	case errors.Is(err, launchpad.ErrWalletNotConnected):
		return "Connect your wallet first"
	case errors.Is(err, launchpad.ErrUserRejectedSigning):
		return "You rejected the transaction in the wallet"
	case errors.Is(err, launchpad.ErrInvalidRequest):
		return "Check the form fields"
	case errors.Is(err, launchpad.ErrRentLookupFailed),
		errors.Is(err, launchpad.ErrBlockReferenceFailed):
		return "The RPC node did not answer, try again"
	case errors.Is(err, launchpad.ErrWalletFailure):
		return "The wallet could not sign the transaction"
	case errors.Is(err, launchpad.ErrSubmissionRejected):
		return "The network rejected the transaction"
	case errors.Is(err, launchpad.ErrConfirmationTimeout):
		return "Not confirmed in time, the token may still appear"
	case errors.Is(err, launchpad.ErrConfirmationFailed):
		return "The transaction failed on chain"
	case errors.Is(err, context.Canceled):
		return "Launch cancelled"
	default:
		return "Launch failed"
	}
}
