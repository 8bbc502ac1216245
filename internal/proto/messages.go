package proto

import (
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// Nonces are carried as decimal strings: Struct numbers are doubles and
// lose precision above 2^53.

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type ChallengeRequest struct {
	Username string `json:"username"`
}

type ChallengeResponse struct {
	Username       string `json:"username"`
	BaseDifficulty uint   `json:"base_difficulty"`
	Difficulty     uint   `json:"difficulty"`
	Target         string `json:"target"`
	Algorithm      string `json:"algorithm"`
}

type RegisterRequest struct {
	Username    string `json:"username"`
	AuthAddress string `json:"auth_address"`
	Digest      string `json:"digest"`
	Nonce       uint64 `json:"nonce,string"`
}

type Registration struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	AuthAddress    string    `json:"auth_address"`
	Digest         string    `json:"digest"`
	Nonce          uint64    `json:"nonce,string"`
	BaseDifficulty uint      `json:"base_difficulty"`
	Difficulty     uint      `json:"difficulty"`
	Algorithm      string    `json:"algorithm"`
	CreatedAt      time.Time `json:"created_at"`
}

type RegisterResponse struct {
	Registration Registration `json:"registration"`
	Receipt      string       `json:"receipt"`
}

// VerifyRequest checks a proof for Identity, a merged
// "{authAddress}:{username}" string.
type VerifyRequest struct {
	Identity string `json:"identity"`
	Digest   string `json:"digest"`
	Nonce    uint64 `json:"nonce,string"`
}

type VerifyResponse struct {
	Valid       bool   `json:"valid"`
	Username    string `json:"username"`
	AuthAddress string `json:"auth_address"`
	Difficulty  uint   `json:"difficulty"`
	Algorithm   string `json:"algorithm"`
}

// LookupRequest selects by Username when set, otherwise by AuthAddress.
type LookupRequest struct {
	Username    string `json:"username,omitempty"`
	AuthAddress string `json:"auth_address,omitempty"`
}

type LookupResponse struct {
	Registrations []Registration `json:"registrations"`
}

type WhoamiRequest struct{}

type WhoamiResponse struct {
	Registration Registration `json:"registration"`
}

// Encode converts a message into a Struct.
func Encode(msg any) (*structpb.Struct, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", msg, err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("encode %T: %w", msg, err)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", msg, err)
	}
	return s, nil
}

// Decode fills msg from s. A nil Struct decodes as an empty message.
func Decode(s *structpb.Struct, msg any) error {
	if s == nil {
		s = &structpb.Struct{}
	}
	b, err := json.Marshal(s.AsMap())
	if err != nil {
		return fmt.Errorf("decode %T: %w", msg, err)
	}
	if err := json.Unmarshal(b, msg); err != nil {
		return fmt.Errorf("decode %T: %w", msg, err)
	}
	return nil
}
