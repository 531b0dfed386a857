package domain

// SubjectType differentiates citizen vs authority callers.
type SubjectType string

const (
	SubjectTypeUser      SubjectType = "user"
	SubjectTypeAuthority SubjectType = "authority"
)
