// Package models defines server-side data models persisted by the registry.
package models

import "time"

// Registration is an accepted identity proof. Username is unique across the
// registry; the stored Digest and Nonce let anyone re-verify the proof later.
type Registration struct {
	ID             string    `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	AuthAddress    string    `db:"auth_address" json:"auth_address"`
	Digest         string    `db:"digest" json:"digest"`
	Nonce          uint64    `db:"nonce" json:"nonce"`
	BaseDifficulty uint      `db:"base_difficulty" json:"base_difficulty"`
	Difficulty     uint      `db:"difficulty" json:"difficulty"`
	Algorithm      string    `db:"algorithm" json:"algorithm"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
