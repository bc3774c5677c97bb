package models

// Session is one connected player: the opaque identity assigned at join plus
// the secret they chose. Owned by the connection layer; games hold references.
type Session struct {
	ID        string
	Secret    string
	Connected bool
}

// Attempt is one accepted guess and its score. Immutable once created.
type Attempt struct {
	UserID string `json:"userId"`
	Guess  string `json:"guess"`
	Match  int    `json:"match"`
}
