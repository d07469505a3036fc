package store

import (
	"context"
	"time"
)

// CallSessionStore remembers, per voice call, the matricola matched by the
// last successful search so that a confirm or reschedule later in the same
// call may omit both identifiers. Entries expire with the call; every
// failure here is non-fatal for the caller.
type CallSessionStore struct {
	kv  KV
	ttl time.Duration
}

func NewCallSessionStore(kv KV, ttl time.Duration) *CallSessionStore {
	return &CallSessionStore{kv: kv, ttl: ttl}
}

func sessionKey(callID string) string {
	return "call:" + callID + ":matricola"
}

// Remember stores the matched matricola for the call.
func (s *CallSessionStore) Remember(ctx context.Context, callID, matricola string) error {
	if callID == "" || matricola == "" {
		return nil
	}
	return s.kv.Set(ctx, sessionKey(callID), matricola, s.ttl)
}

// Lookup returns the remembered matricola, or "" on miss or error.
func (s *CallSessionStore) Lookup(ctx context.Context, callID string) string {
	if callID == "" {
		return ""
	}
	v, err := s.kv.Get(ctx, sessionKey(callID))
	if err != nil {
		return ""
	}
	return v
}

// Forget drops the call's entry.
func (s *CallSessionStore) Forget(ctx context.Context, callID string) {
	if callID == "" {
		return
	}
	_ = s.kv.Del(ctx, sessionKey(callID))
}
