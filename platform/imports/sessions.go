package imports

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Session status values tracked for every socket connection
const (
	SessionConnected    = "connected"
	SessionDisconnected = "disconnected"
)

const (
	// Import session table
	RedisSessionTable            = "imports:session:"
	RedisSessionTimestampAttr    = ":timestamp"
	RedisSessionSourceIPAttr     = ":source_ip"
	RedisSessionCountryAttr      = ":country"
	RedisSessionStatusAttr       = ":status"
	RedisSessionOrganizationAttr = ":organization"
)

// Session is the tracked state of one import socket connection
type Session struct {
	ConnectionID string
	Timestamp    int64
	SourceIP     string
	Country      string
	Status       string
	Organization string
}

/*
SessionRegistry represents an object that tracks the lifecycle of import
socket connections so workers can tell whether a reply still has somewhere
to go
*/
type SessionRegistry interface {
	ConnectSession(id string, sourceIP string, country string, organization string) error
	DisconnectSession(id string) error
	SessionStatus(id string) (string, error)
	Session(id string) (Session, error)
}

// RedisSessionStore implements SessionRegistry using Redis
type RedisSessionStore struct {
	rdb   *redis.Client
	ctx   context.Context
	mutex *sync.RWMutex
}

/*
NewRedisSessionStore creates a new instance of RedisSessionStore
referencing the redis instance at addr
*/
func NewRedisSessionStore(addr string) *RedisSessionStore {
	return &RedisSessionStore{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: "",
			DB:       0,
		}),
		ctx:   context.Background(),
		mutex: &sync.RWMutex{},
	}
}

// ConnectSession records a fresh connection as connected
func (r *RedisSessionStore) ConnectSession(id string, sourceIP string, country string, organization string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	sessionKey := RedisSessionTable + id
	entries := map[string]string{
		sessionKey + RedisSessionTimestampAttr:    strconv.FormatInt(time.Now().UTC().Unix(), 10),
		sessionKey + RedisSessionSourceIPAttr:     sourceIP,
		sessionKey + RedisSessionCountryAttr:      country,
		sessionKey + RedisSessionStatusAttr:       SessionConnected,
		sessionKey + RedisSessionOrganizationAttr: organization,
	}
	for key, value := range entries {
		if err := r.rdb.Set(r.ctx, key, value, 0).Err(); err != nil {
			return fmt.Errorf("failed to create session entry for connection(%s): %w", id, err)
		}
	}
	return nil
}

// DisconnectSession marks the connection's session as disconnected
func (r *RedisSessionStore) DisconnectSession(id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	statusKey := RedisSessionTable + id + RedisSessionStatusAttr
	if err := r.rdb.Set(r.ctx, statusKey, SessionDisconnected, 0).Err(); err != nil {
		return fmt.Errorf("failed to mark connection(%s) disconnected: %w", id, err)
	}
	return nil
}

// SessionStatus retrieves the session status for the connection
func (r *RedisSessionStore) SessionStatus(id string) (string, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	statusKey := RedisSessionTable + id + RedisSessionStatusAttr
	status, err := r.rdb.Get(r.ctx, statusKey).Result()
	if err == redis.Nil {
		return "", fmt.Errorf("no session for connection %s", id)
	} else if err != nil {
		return "", fmt.Errorf("failed to get session status for connection(%s): %w", id, err)
	}
	return status, nil
}

// Session retrieves the full tracked state for the connection
func (r *RedisSessionStore) Session(id string) (Session, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	sessionKey := RedisSessionTable + id
	session := Session{ConnectionID: id}

	status, err := r.rdb.Get(r.ctx, sessionKey+RedisSessionStatusAttr).Result()
	if err == redis.Nil {
		return session, fmt.Errorf("no session for connection %s", id)
	} else if err != nil {
		return session, fmt.Errorf("failed to get session for connection(%s): %w", id, err)
	}
	session.Status = status

	rawTimestamp, err := r.rdb.Get(r.ctx, sessionKey+RedisSessionTimestampAttr).Result()
	if err != nil {
		return session, fmt.Errorf("failed to get session timestamp for connection(%s): %w", id, err)
	}
	session.Timestamp, err = strconv.ParseInt(rawTimestamp, 10, 64)
	if err != nil {
		return session, fmt.Errorf("failed to parse session timestamp for connection(%s): %w", id, err)
	}

	if session.SourceIP, err = r.rdb.Get(r.ctx, sessionKey+RedisSessionSourceIPAttr).Result(); err != nil {
		return session, fmt.Errorf("failed to get session source ip for connection(%s): %w", id, err)
	}
	if session.Country, err = r.rdb.Get(r.ctx, sessionKey+RedisSessionCountryAttr).Result(); err != nil {
		return session, fmt.Errorf("failed to get session country for connection(%s): %w", id, err)
	}
	if session.Organization, err = r.rdb.Get(r.ctx, sessionKey+RedisSessionOrganizationAttr).Result(); err != nil {
		return session, fmt.Errorf("failed to get session organization for connection(%s): %w", id, err)
	}
	return session, nil
}
