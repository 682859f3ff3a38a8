package domain

import "github.com/google/uuid"

// SessionID はセッションの識別子です。キャラクターのエンティティIDとしても使います。
type SessionID uuid.UUID

func NewSessionID() SessionID { return SessionID(uuid.New()) }

// SessionIDFromBytes はヘッダーの16バイトからSessionIDを作ります。
func SessionIDFromBytes(b [16]byte) SessionID { return SessionID(b) }

func (id SessionID) Bytes() [16]byte { return [16]byte(id) }

func (id SessionID) String() string { return uuid.UUID(id).String() }

func (id SessionID) IsZero() bool { return id == SessionID{} }
