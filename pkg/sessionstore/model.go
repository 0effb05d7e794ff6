package sessionstore

import (
	"time"

	"github.com/uptrace/bun"
)

// SessionDao is a data access object that maps directly to the 'sessions' table in PostgreSQL.
// Only a SHA-256 digest of the session token is stored, never the token itself.
type SessionDao struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`
	ID            string    `bun:"id,pk,type:uuid"`
	UserID        int64     `bun:"user_id,notnull"`
	TokenHash     string    `bun:"token_hash,unique,notnull,type:varchar(64)"`
	ExpiresAt     time.Time `bun:"expires_at,notnull"`
	IPAddress     *string   `bun:"ip_address,type:varchar(45)"`
	UserAgent     *string   `bun:"user_agent,type:varchar(500)"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

// toSessionDao converts a Session to SessionDao.
func toSessionDao(sess *Session) *SessionDao {
	dao := &SessionDao{
		ID:        sess.ID,
		UserID:    sess.UserID,
		TokenHash: sess.TokenHash,
		ExpiresAt: sess.ExpiresAt,
		CreatedAt: sess.CreatedAt,
	}

	if sess.IPAddress != "" {
		dao.IPAddress = &sess.IPAddress
	}
	if sess.UserAgent != "" {
		dao.UserAgent = &sess.UserAgent
	}

	return dao
}

// toSession converts a SessionDao to Session.
func toSession(dao *SessionDao) *Session {
	sess := &Session{
		ID:        dao.ID,
		UserID:    dao.UserID,
		TokenHash: dao.TokenHash,
		ExpiresAt: dao.ExpiresAt,
		CreatedAt: dao.CreatedAt,
	}

	if dao.IPAddress != nil {
		sess.IPAddress = *dao.IPAddress
	}
	if dao.UserAgent != nil {
		sess.UserAgent = *dao.UserAgent
	}

	return sess
}
