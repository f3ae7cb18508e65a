// ==================================
// File: internal/wallet/wallet.go
// ==================================
package wallet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rovshanmuradov/token-launchpad/internal/blockchain/solana/transaction"
	"github.com/rovshanmuradov/token-launchpad/internal/launchpad"
)

var (
	ErrNoApprover       = errors.New("wallet needs an approver to connect")
	ErrNotFeePayer      = errors.New("transaction fee payer is not this wallet")
	ErrUnexpectedSigner = errors.New("transaction still misses foreign signatures")
)

// Wallet представляет кошелёк Solana, который подписывает только после одобрения.
type Wallet struct {
	PrivateKey solana.PrivateKey
	PublicKey  solana.PublicKey

	mu        sync.RWMutex
	connected bool
	approver  Approver
	logger    *zap.Logger
}

// NewWallet создаёт новый кошелёк из base58-encoded приватного ключа.
func NewWallet(privateKeyBase58 string) (*Wallet, error) {
	privateKeyBytes, err := base58.Decode(privateKeyBase58)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	return fromBytes(privateKeyBytes)
}

// LoadKeypairFile читает ключ в формате solana-keygen (JSON-массив из 64 байт).
func LoadKeypairFile(path string) (*Wallet, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read keypair file: %w", err)
	}
	return fromBytes(key)
}

func fromBytes(raw []byte) (*Wallet, error) {
	if len(raw) != 64 {
		return nil, fmt.Errorf("invalid private key length: expected 64 bytes, got %d", len(raw))
	}
	privateKey := solana.PrivateKey(raw)
	return &Wallet{
		PrivateKey: privateKey,
		PublicKey:  privateKey.PublicKey(),
		logger:     zap.NewNop(),
	}, nil
}

// walletsFile - структура YAML-файла с именованными кошельками.
type walletsFile struct {
	Wallets []struct {
		Name       string `yaml:"name"`
		PrivateKey string `yaml:"private_key"`
	} `yaml:"wallets"`
}

// LoadWallets загружает кошельки из YAML-файла. Записи с пустыми полями пропускаются,
// некорректный ключ считается ошибкой.
func LoadWallets(path string) (map[string]*Wallet, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var file walletsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	wallets := make(map[string]*Wallet)
	for _, entry := range file.Wallets {
		if entry.Name == "" || entry.PrivateKey == "" {
			continue
		}
		w, err := NewWallet(entry.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("wallet %q: %w", entry.Name, err)
		}
		wallets[entry.Name] = w
	}

	if len(wallets) == 0 {
		return nil, fmt.Errorf("no valid wallets loaded")
	}
	return wallets, nil
}

// WithLogger задаёт логгер кошелька.
func (w *Wallet) WithLogger(logger *zap.Logger) *Wallet {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.logger = logger.Named("wallet").With(zap.String("wallet", w.PublicKey.String()))
	return w
}

// Connect открывает сессию. Каждая подпись будет проходить через approver.
func (w *Wallet) Connect(approver Approver) error {
	if approver == nil {
		return ErrNoApprover
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.approver = approver
	w.connected = true
	w.logger.Info("Wallet connected")
	return nil
}

// Disconnect закрывает сессию.
func (w *Wallet) Disconnect() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.connected {
		w.logger.Info("Wallet disconnected")
	}
	w.connected = false
	w.approver = nil
}

func (w *Wallet) Connected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}

// PublicAddress возвращает адрес, пока сессия открыта.
func (w *Wallet) PublicAddress() solana.PublicKey {
	if !w.Connected() {
		return solana.PublicKey{}
	}
	return w.PublicKey
}

// SignAndSend спрашивает approver, добавляет подпись кошелька и отправляет транзакцию.
func (w *Wallet) SignAndSend(
	ctx context.Context,
	tx *solana.Transaction,
	ledger launchpad.LedgerClient,
) (solana.Signature, error) {
	w.mu.RLock()
	connected, approver, logger := w.connected, w.approver, w.logger
	w.mu.RUnlock()

	if !connected {
		return solana.Signature{}, launchpad.ErrWalletNotConnected
	}
	if tx == nil || len(tx.Message.AccountKeys) == 0 {
		return solana.Signature{}, fmt.Errorf("%w: empty transaction", launchpad.ErrWalletFailure)
	}
	if !tx.Message.AccountKeys[0].Equals(w.PublicKey) {
		return solana.Signature{}, fmt.Errorf("%w: %w", launchpad.ErrWalletFailure, ErrNotFeePayer)
	}

	req := Describe(tx, w.PublicKey)
	approved, err := approver.Approve(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return solana.Signature{}, fmt.Errorf("approval: %w", err)
		}
		return solana.Signature{}, fmt.Errorf("%w: approval: %w", launchpad.ErrWalletFailure, err)
	}
	if !approved {
		logger.Info("Signing request declined")
		return solana.Signature{}, launchpad.ErrUserRejectedSigning
	}

	if err := transaction.PartialSign(tx, w.PrivateKey); err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %w", launchpad.ErrWalletFailure, err)
	}
	if missing := transaction.MissingSigners(tx); len(missing) > 0 {
		return solana.Signature{}, fmt.Errorf("%w: %w: %v", launchpad.ErrWalletFailure, ErrUnexpectedSigner, missing)
	}
	if err := tx.VerifySignatures(); err != nil {
		return solana.Signature{}, fmt.Errorf("%w: signature verification failed: %w", launchpad.ErrWalletFailure, err)
	}

	sig, err := ledger.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, err
	}
	logger.Debug("Transaction submitted", zap.String("signature", sig.String()))
	return sig, nil
}

// String возвращает строковое представление кошелька (его публичный ключ).
func (w *Wallet) String() string {
	return w.PublicKey.String()
}

var _ launchpad.WalletSession = (*Wallet)(nil)

// Source указывает, откуда брать ключ. Приоритет: PrivateKey, KeypairPath, WalletsFile.
type Source struct {
	PrivateKey  string
	KeypairPath string
	WalletsFile string
	WalletName  string
}

// Open загружает кошелёк из первого заданного источника.
func Open(src Source) (*Wallet, error) {
	switch {
	case src.PrivateKey != "":
		return NewWallet(src.PrivateKey)
	case src.KeypairPath != "":
		return LoadKeypairFile(src.KeypairPath)
	case src.WalletsFile != "":
		wallets, err := LoadWallets(src.WalletsFile)
		if err != nil {
			return nil, err
		}
		w, ok := wallets[src.WalletName]
		if !ok {
			return nil, fmt.Errorf("wallet %q not found in %s", src.WalletName, src.WalletsFile)
		}
		return w, nil
	}
	return nil, errors.New("no wallet key configured")
}
