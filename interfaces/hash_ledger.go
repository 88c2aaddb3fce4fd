package interfaces

// HashLedger is the durable "seen before" set of content hashes. Entries are
// append-only; an entry is never removed.
type HashLedger interface {
	Contains(hash string) bool
	Record(hash string) error
	Len() int
}
