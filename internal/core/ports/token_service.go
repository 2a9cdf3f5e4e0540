package ports

// TokenValidator is the read side of the token service, all the auth
// middleware needs: it checks a raw bearer token and returns the subject
// it vouches for.
type TokenValidator interface {
	Validate(raw string) (subject string, err error)
}

// TokenService issues and validates signed bearer tokens. Tokens bind a
// subject name to a fixed validity window; they carry no role and are
// never persisted.
type TokenService interface {
	TokenValidator
	Issue(subject string) (string, error)
	// Refresh issues a fresh token for an already-authenticated subject.
	// The previous token is not invalidated; there is no revocation list.
	Refresh(subject string) (string, error)
}
