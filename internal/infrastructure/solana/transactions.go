package solana

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
)

// Program IDs
var (
	MplCoreProgramID = solana.MustPublicKeyFromBase58("CoREENxT6tW1HoK8ypY1SxRMZTcVPm7R94rH4PZNhX7d")
	MemoProgramID    = solana.MustPublicKeyFromBase58("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")
)

const (
	createV1Discriminator = 0
	dataStateAccount      = 0
)

// CoreAsset describes a Metaplex Core asset to create.
// Collection and Authority are optional and left zero when absent.
type CoreAsset struct {
	Asset      solana.PublicKey
	Collection solana.PublicKey
	Authority  solana.PublicKey
	Payer      solana.PublicKey
	Owner      solana.PublicKey
	Name       string
	URI        string
}

// CreateV1Instruction builds the Metaplex Core CreateV1 instruction.
// Absent optional accounts are passed as the program ID.
func CreateV1Instruction(a CoreAsset) (solana.Instruction, error) {
	if a.Asset.IsZero() || a.Payer.IsZero() {
		return nil, fmt.Errorf("asset and payer are required")
	}

	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteUint8(createV1Discriminator); err != nil {
		return nil, err
	}
	if err := enc.WriteUint8(dataStateAccount); err != nil {
		return nil, err
	}
	if err := enc.WriteString(a.Name); err != nil {
		return nil, fmt.Errorf("failed to encode name: %w", err)
	}
	if err := enc.WriteString(a.URI); err != nil {
		return nil, fmt.Errorf("failed to encode uri: %w", err)
	}
	// plugins: None
	if err := enc.WriteUint8(0); err != nil {
		return nil, err
	}

	optional := func(key solana.PublicKey, writable, signer bool) *solana.AccountMeta {
		if key.IsZero() {
			return solana.NewAccountMeta(MplCoreProgramID, false, false)
		}
		return solana.NewAccountMeta(key, writable, signer)
	}

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(a.Asset, true, true),
		optional(a.Collection, true, false),
		optional(a.Authority, false, true),
		solana.NewAccountMeta(a.Payer, true, true),
		optional(a.Owner, false, false),
		// update authority stays None so a collection can govern the asset
		solana.NewAccountMeta(MplCoreProgramID, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		// log wrapper
		solana.NewAccountMeta(MplCoreProgramID, false, false),
	}

	return solana.NewInstruction(MplCoreProgramID, accounts, buf.Bytes()), nil
}

// SOLPaymentInstruction transfers lamports from payer to recipient
func SOLPaymentInstruction(payer, recipient solana.PublicKey, lamports uint64) solana.Instruction {
	return system.NewTransferInstruction(lamports, payer, recipient).Build()
}

// TokenPaymentInstruction transfers amount base units of mint between the
// associated token accounts of payer and recipient
func TokenPaymentInstruction(payer, recipient, mint solana.PublicKey, amount uint64, decimals uint8) (solana.Instruction, error) {
	source, _, err := solana.FindAssociatedTokenAddress(payer, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive payer token account: %w", err)
	}
	destination, _, err := solana.FindAssociatedTokenAddress(recipient, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive recipient token account: %w", err)
	}

	return token.NewTransferCheckedInstruction(
		amount,
		decimals,
		source,
		mint,
		destination,
		payer,
		nil,
	).Build(), nil
}

// MemoInstruction writes memo on chain, requiring every signer to sign
func MemoInstruction(memo []byte, signers ...solana.PublicKey) solana.Instruction {
	accounts := make(solana.AccountMetaSlice, 0, len(signers))
	for _, s := range signers {
		accounts = append(accounts, solana.NewAccountMeta(s, false, true))
	}
	return solana.NewInstruction(MemoProgramID, accounts, memo)
}

// BuildTransaction assembles an unsigned transaction with every signature slot empty
func BuildTransaction(instructions []solana.Instruction, blockhash string, payer solana.PublicKey) (*solana.Transaction, error) {
	hash, err := solana.HashFromBase58(blockhash)
	if err != nil {
		return nil, fmt.Errorf("invalid blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instructions, hash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}
	tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)
	return tx, nil
}

// PartialSign adds the signatures of the given keys, leaving other slots untouched
func PartialSign(tx *solana.Transaction, keys ...solana.PrivateKey) error {
	_, err := tx.PartialSign(func(pub solana.PublicKey) *solana.PrivateKey {
		for i := range keys {
			if keys[i].PublicKey().Equals(pub) {
				return &keys[i]
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	return nil
}

// EncodeTransaction serializes a transaction to its wire format
func EncodeTransaction(tx *solana.Transaction) ([]byte, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize transaction: %w", err)
	}
	return raw, nil
}

// DecodeTransaction parses a transaction from its wire format
func DecodeTransaction(raw []byte) (*solana.Transaction, error) {
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}
	return tx, nil
}

// SameMessage reports whether both transactions carry byte-identical messages
func SameMessage(a, b *solana.Transaction) (bool, error) {
	am, err := a.Message.MarshalBinary()
	if err != nil {
		return false, err
	}
	bm, err := b.Message.MarshalBinary()
	if err != nil {
		return false, err
	}
	return bytes.Equal(am, bm), nil
}

// IsSignedBy reports whether the signature slot of pub is filled
func IsSignedBy(tx *solana.Transaction, pub solana.PublicKey) bool {
	n := int(tx.Message.Header.NumRequiredSignatures)
	for i := 0; i < n && i < len(tx.Message.AccountKeys) && i < len(tx.Signatures); i++ {
		if tx.Message.AccountKeys[i].Equals(pub) {
			return !tx.Signatures[i].IsZero()
		}
	}
	return false
}
