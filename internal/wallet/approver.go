package wallet

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/token-launchpad/internal/blockchain/solana/transaction"
)

// ApprovalRequest is what the user sees before the wallet signs.
type ApprovalRequest struct {
	Wallet          solana.PublicKey
	FeePayer        solana.PublicKey
	CoSigners       []solana.PublicKey
	Programs        []solana.PublicKey
	Instructions    int
	RecentBlockhash solana.Hash
}

// Describe summarises tx for an approval prompt.
func Describe(tx *solana.Transaction, wallet solana.PublicKey) ApprovalRequest {
	req := ApprovalRequest{
		Wallet:          wallet,
		Instructions:    len(tx.Message.Instructions),
		RecentBlockhash: tx.Message.RecentBlockhash,
	}
	if len(tx.Message.AccountKeys) > 0 {
		req.FeePayer = tx.Message.AccountKeys[0]
	}
	for _, signer := range transaction.RequiredSigners(tx) {
		if !signer.Equals(wallet) {
			req.CoSigners = append(req.CoSigners, signer)
		}
	}

	seen := make(map[solana.PublicKey]bool)
	for _, ix := range tx.Message.Instructions {
		if int(ix.ProgramIDIndex) >= len(tx.Message.AccountKeys) {
			continue
		}
		program := tx.Message.AccountKeys[ix.ProgramIDIndex]
		if !seen[program] {
			seen[program] = true
			req.Programs = append(req.Programs, program)
		}
	}
	return req
}

// Summary renders the request as a few human readable lines.
func (r ApprovalRequest) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Wallet:       %s\n", r.Wallet)
	fmt.Fprintf(&b, "Fee payer:    %s\n", r.FeePayer)
	for _, s := range r.CoSigners {
		fmt.Fprintf(&b, "Co-signed by: %s\n", s)
	}
	fmt.Fprintf(&b, "Instructions: %d\n", r.Instructions)
	for _, p := range r.Programs {
		fmt.Fprintf(&b, "Program:      %s\n", p)
	}
	return b.String()
}

// Approver decides whether the wallet may sign. Approve may block on a human and
// must return when ctx is done.
type Approver interface {
	Approve(ctx context.Context, req ApprovalRequest) (bool, error)
}

// ApproverFunc adapts a function to Approver.
type ApproverFunc func(ctx context.Context, req ApprovalRequest) (bool, error)

func (f ApproverFunc) Approve(ctx context.Context, req ApprovalRequest) (bool, error) {
	return f(ctx, req)
}

// AutoApprove signs everything. For scripted use only.
var AutoApprove Approver = ApproverFunc(func(ctx context.Context, _ ApprovalRequest) (bool, error) {
	return true, ctx.Err()
})

// PromptApprover asks a y/N question on a terminal.
// Ввод читает одна фоновая горутина, поэтому в полёте всегда не больше одного ReadString.
type PromptApprover struct {
	in  *bufio.Reader
	out io.Writer

	mu       sync.Mutex
	start    sync.Once
	requests chan struct{}
	answers  chan answer
	pending  bool
}

func NewPromptApprover(in io.Reader, out io.Writer) *PromptApprover {
	return &PromptApprover{
		in:       bufio.NewReader(in),
		out:      out,
		requests: make(chan struct{}, 1),
		answers:  make(chan answer, 1),
	}
}

type answer struct {
	line string
	err  error
}

func (p *PromptApprover) readLoop() {
	for range p.requests {
		line, err := p.in.ReadString('\n')
		p.answers <- answer{line: line, err: err}
	}
}

// Approve prints the summary and waits for an answer. Anything but y/yes declines.
// On ctx cancellation the read stays outstanding and answers the next prompt.
func (p *PromptApprover) Approve(ctx context.Context, req ApprovalRequest) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.start.Do(func() { go p.readLoop() })

	fmt.Fprint(p.out, req.Summary())
	fmt.Fprint(p.out, "Approve and sign? [y/N]: ")

	if !p.pending {
		p.requests <- struct{}{}
		p.pending = true
	}

	select {
	case <-ctx.Done():
		fmt.Fprintln(p.out)
		return false, ctx.Err()
	case a := <-p.answers:
		p.pending = false
		if a.err != nil && a.line == "" {
			if a.err == io.EOF {
				return false, nil
			}
			return false, a.err
		}
		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}
