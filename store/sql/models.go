package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type sessionRecord struct {
	bun.BaseModel `bun:"table:auth_sessions,alias:aus"`

	ID         string     `bun:"id,pk"`
	SessionKey string     `bun:"session_key,notnull,unique"`
	Payload    []byte     `bun:"payload,notnull"`
	Encrypted  bool       `bun:"encrypted,notnull"`
	ExpiresAt  *time.Time `bun:"expires_at,nullzero"`
	CreatedAt  time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt  time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
