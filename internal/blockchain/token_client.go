package blockchain

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
)

// tokenDecimals is the SPL mint's decimal count used when converting ledger
// amounts to base units.
const tokenDecimals = 9

// TokenClient mirrors ledger credits as SPL token transfers from the server
// wallet. The database ledger is authoritative; this client is best effort
// and can be left unconfigured entirely.
type TokenClient struct {
	rpcClient    *rpc.Client
	network      string
	mint         solana.PublicKey
	serverWallet *solana.Wallet
}

// NewTokenClient builds a client for the given network. An empty mint address
// or private key leaves the client disabled.
func NewTokenClient(network, mintAddress, privateKey string) *TokenClient {
	var rpcURL string
	switch network {
	case "mainnet-beta":
		rpcURL = rpc.MainNetBeta_RPC
	case "testnet":
		rpcURL = rpc.TestNet_RPC
	default:
		rpcURL = rpc.DevNet_RPC
	}

	client := &TokenClient{
		rpcClient: rpc.New(rpcURL),
		network:   network,
	}

	if mintAddress != "" {
		mint, err := solana.PublicKeyFromBase58(mintAddress)
		if err != nil {
			log.Printf("[TokenClient] invalid mint address: %v", err)
			return client
		}
		client.mint = mint
	}

	if privateKey != "" {
		wallet, err := solana.WalletFromPrivateKeyBase58(privateKey)
		if err != nil {
			log.Printf("[TokenClient] failed to load server wallet: %v", err)
			return client
		}
		client.serverWallet = wallet
		log.Printf("[TokenClient] server wallet loaded: %s", wallet.PublicKey())
	}

	return client
}

// Enabled reports whether the client can actually submit transfers.
func (c *TokenClient) Enabled() bool {
	return c.serverWallet != nil && !c.mint.IsZero()
}

// MirrorCredit transfers amount tokens from the server wallet to the given
// wallet's associated token account and returns the transaction signature.
func (c *TokenClient) MirrorCredit(ctx context.Context, walletAddress string, amount decimal.Decimal) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("token client not configured")
	}

	dest, err := solana.PublicKeyFromBase58(walletAddress)
	if err != nil {
		return "", fmt.Errorf("invalid destination wallet: %w", err)
	}

	sourceATA, _, err := solana.FindAssociatedTokenAddress(c.serverWallet.PublicKey(), c.mint)
	if err != nil {
		return "", fmt.Errorf("failed to derive source token account: %w", err)
	}
	destATA, _, err := solana.FindAssociatedTokenAddress(dest, c.mint)
	if err != nil {
		return "", fmt.Errorf("failed to derive destination token account: %w", err)
	}

	baseUnits := amount.Shift(tokenDecimals)
	if !baseUnits.IsInteger() || baseUnits.Sign() <= 0 {
		return "", fmt.Errorf("amount %s does not convert to whole base units", amount)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	recent, err := c.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return "", fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	transfer := token.NewTransferInstruction(
		baseUnits.BigInt().Uint64(),
		sourceATA,
		destATA,
		c.serverWallet.PublicKey(),
		nil,
	).Build()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{transfer},
		recent.Value.Blockhash,
		solana.TransactionPayer(c.serverWallet.PublicKey()),
	)
	if err != nil {
		return "", fmt.Errorf("failed to build transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(c.serverWallet.PublicKey()) {
			pk := c.serverWallet.PrivateKey
			return &pk
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := c.rpcClient.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	return sig.String(), nil
}

// GetTokenBalance reads the server wallet's token balance, mainly for
// operational diagnostics.
func (c *TokenClient) GetTokenBalance(ctx context.Context) (decimal.Decimal, error) {
	if !c.Enabled() {
		return decimal.Zero, fmt.Errorf("token client not configured")
	}

	ata, _, err := solana.FindAssociatedTokenAddress(c.serverWallet.PublicKey(), c.mint)
	if err != nil {
		return decimal.Zero, err
	}

	balance, err := c.rpcClient.GetTokenAccountBalance(ctx, ata, rpc.CommitmentConfirmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read token balance: %w", err)
	}

	raw, err := decimal.NewFromString(balance.Value.Amount)
	if err != nil {
		return decimal.Zero, err
	}
	return raw.Shift(-tokenDecimals), nil
}
