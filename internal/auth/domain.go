package auth

// Credential is the stored login material for an account. PasswordHash
// is empty for passwordless accounts; those cannot log in here and must
// come through the external identity provider.
type Credential struct {
	AccountID    int64
	Email        string
	PasswordHash string
}
