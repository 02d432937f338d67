package services

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/haroldubarric0/AI-FactCheck-Fhe/fhe"
	"github.com/haroldubarric0/AI-FactCheck-Fhe/protocol"
)

// Signed wraps a request body with a secp256k1 signature over the keccak256
// hash of its JSON encoding. The caller address is recovered from the
// signature, so requests carry no separate identity field.
type Signed[T any] struct {
	Signature hexutil.Bytes `json:"signature"`
	Object    *T            `json:"object"`
}

// NewSigned signs the object with the given key.
func NewSigned[T any](key *ecdsa.PrivateKey, obj *T) (*Signed[T], error) {
	payload, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	sig, err := gethcrypto.Sign(gethcrypto.Keccak256(payload), key)
	if err != nil {
		return nil, err
	}
	return &Signed[T]{Signature: sig, Object: obj}, nil
}

// Recover returns the wrapped object and the address that signed it.
func (s *Signed[T]) Recover() (*T, common.Address, error) {
	if s.Object == nil {
		return nil, common.Address{}, errors.New("missing signed object")
	}
	if len(s.Signature) != gethcrypto.SignatureLength {
		return nil, common.Address{}, errors.New("malformed signature")
	}
	payload, err := json.Marshal(s.Object)
	if err != nil {
		return nil, common.Address{}, err
	}
	pub, err := gethcrypto.SigToPub(gethcrypto.Keccak256(payload), s.Signature)
	if err != nil {
		return nil, common.Address{}, err
	}
	return s.Object, gethcrypto.PubkeyToAddress(*pub), nil
}

// EncryptRequest asks the node's encryption gateway for a fresh handle.
// Only served when the node runs with a local scheme.
type EncryptRequest struct {
	Value uint64 `json:"value"`
}

// EncryptResponse returns the handle referencing the encrypted value.
type EncryptResponse struct {
	Handle fhe.Ciphertext `json:"handle"`
}

// SubmitPostRequest carries the encrypted content and interaction handles
// for a new post. Either handle may be empty; the ledger materializes empty
// handles as trivial encryptions of zero.
type SubmitPostRequest struct {
	Content     fhe.Ciphertext `json:"content"`
	Interaction fhe.Ciphertext `json:"interaction"`
}

// SubmitPostResponse reports the identity assigned to an accepted post.
type SubmitPostResponse struct {
	PostID  common.Hash `json:"post_id"`
	BatchID uint64      `json:"batch_id"`
}

// ComputeScoreRequest asks the node to score a post and request decryption.
type ComputeScoreRequest struct {
	PostID common.Hash `json:"post_id"`
}

// ComputeScoreResponse reports the decryption request issued for a score.
type ComputeScoreResponse struct {
	RequestID protocol.RequestID `json:"request_id"`
}

// OracleCallbackRequest delivers a decryption result. Handles echo the
// ciphertexts the result decrypts so the ledger can recompute the request
// commitment; the proof attests the cleartexts.
type OracleCallbackRequest struct {
	RequestID  protocol.RequestID `json:"request_id"`
	Handles    []fhe.Ciphertext   `json:"handles"`
	Cleartexts hexutil.Bytes      `json:"cleartexts"`
	Proof      hexutil.Bytes      `json:"proof"`
}

// OracleCallbackResponse reports the reveal produced by a callback.
type OracleCallbackResponse struct {
	PostID  common.Hash  `json:"post_id"`
	BatchID uint64       `json:"batch_id"`
	Score   *uint256.Int `json:"score"`
}

// StatusResponse summarizes the node's ledger state.
type StatusResponse struct {
	Version         string         `json:"version"`
	InstanceID      common.Hash    `json:"instance_id"`
	Owner           common.Address `json:"owner"`
	Paused          bool           `json:"paused"`
	BatchID         uint64         `json:"batch_id"`
	BatchOpen       bool           `json:"batch_open"`
	CooldownSeconds uint64         `json:"cooldown_seconds"`
}

// BatchResponse describes the current batch.
type BatchResponse struct {
	BatchID uint64 `json:"batch_id"`
	Open    bool   `json:"open"`
}

// PostResponse describes a stored post. The encrypted handles are included
// so a submitter can confirm what the ledger holds; they reveal nothing
// without the scheme's key.
type PostResponse struct {
	PostID      common.Hash    `json:"post_id"`
	Submitter   common.Address `json:"submitter"`
	BatchID     uint64         `json:"batch_id"`
	Content     fhe.Ciphertext `json:"content"`
	Interaction fhe.Ciphertext `json:"interaction"`
	Processed   bool           `json:"processed"`
	Revealed    bool           `json:"revealed"`
	Score       *uint256.Int   `json:"score,omitempty"`
}

// RequestResponse describes a decryption request.
type RequestResponse struct {
	RequestID  protocol.RequestID `json:"request_id"`
	PostID     common.Hash        `json:"post_id"`
	BatchID    uint64             `json:"batch_id"`
	Commitment common.Hash        `json:"commitment"`
	Finalized  bool               `json:"finalized"`
}

// BatchControlRequest names the lifecycle action an admin endpoint applies.
// The action is crosschecked against the endpoint so a signed request cannot
// be replayed against a different control.
type BatchControlRequest struct {
	Action string `json:"action"`
}

// ProviderRequest adds or removes a permissioned submitter.
type ProviderRequest struct {
	Address common.Address `json:"address"`
}

// CooldownRequest updates the per-address rate limit.
type CooldownRequest struct {
	Seconds uint64 `json:"seconds"`
}

// OwnershipRequest hands the ledger to a new owner.
type OwnershipRequest struct {
	NewOwner common.Address `json:"new_owner"`
}
