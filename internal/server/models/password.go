package models

import "time"

// PasswordConfiguration is the shape a generated secret must have.
// Lowercase letters are always part of the pool.
type PasswordConfiguration struct {
	Length                   int
	IncludeNumbers           bool
	IncludeUppercaseLetters  bool
	IncludeSpecialCharacters bool
}

// Password is the decrypted view of a vault entry. Scopes is nil when the
// entry has no scopes.
type Password struct {
	ID            string
	UserID        string
	Type          PasswordType
	Secret        string
	Tail          string
	Scopes        *string
	Configuration PasswordConfiguration
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

// PasswordRow is a vault entry as persisted: tail, scopes, and secret are
// sealed with the owner's key. Scopes is nil when absent; Secret is nil
// once the entry is deleted.
type PasswordRow struct {
	ID            string
	UserID        string
	Type          PasswordType
	Tail          []byte
	Scopes        []byte
	Secret        []byte
	Configuration PasswordConfiguration
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

// Deleted reports whether the row is a tombstone.
func (r *PasswordRow) Deleted() bool { return r.DeletedAt != nil }

// Clone returns a deep copy, so callers can mutate it without touching
// shared state.
func (r *PasswordRow) Clone() *PasswordRow {
	c := *r
	c.Tail = append([]byte(nil), r.Tail...)
	if r.Scopes != nil {
		c.Scopes = append([]byte(nil), r.Scopes...)
	}
	if r.Secret != nil {
		c.Secret = append([]byte(nil), r.Secret...)
	}
	if r.DeletedAt != nil {
		d := *r.DeletedAt
		c.DeletedAt = &d
	}
	return &c
}

// PasswordEvent is an immutable audit record. Seq breaks ties between
// events with the same EventDate; it is assigned by the store.
type PasswordEvent struct {
	ID         string
	PasswordID string
	UserID     string
	DeviceID   string
	Type       EventType
	EventDate  time.Time
	Seq        int64
}

// Keychain is one page of a user's passwords.
type Keychain struct {
	Passwords []*Password
	Page      int
	PageSize  int
	Total     int
}
