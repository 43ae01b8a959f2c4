package models

// AssociationStatus tags the outcome of an association request.
type AssociationStatus int

const (
	Associated AssociationStatus = iota + 1
	AlreadyAssociated
	AssociationFailed
)

func (s AssociationStatus) String() string {
	switch s {
	case Associated:
		return "associated"
	case AlreadyAssociated:
		return "already_associated"
	case AssociationFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// AssociationResult is Associated, AlreadyAssociated, or Failed with Err set
// to an association StageError.
type AssociationResult struct {
	Status        AssociationStatus
	TransactionID string
	Err           error
}

// OK reports whether the account now holds every requested token.
func (r AssociationResult) OK() bool {
	return r.Status == Associated || r.Status == AlreadyAssociated
}
