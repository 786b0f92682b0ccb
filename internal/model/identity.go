package model

// Identity is the decoded result of verifying a bearer token. Email is empty
// for anonymous callers.
type Identity struct {
	Email string
}
