package domain

// ThreadNode is one message in a materialized reply forest.
// Replies keep the order of the underlying fetch.
type ThreadNode struct {
	Message Message       `json:"message"`
	Replies []*ThreadNode `json:"replies"`
}
