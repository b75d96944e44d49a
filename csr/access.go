package csr

// AccessType classifies how a field's writable values are constrained.
type AccessType uint8

// Access-type classifications.
const (
	// AccessUnset means no classification has been applied.
	AccessUnset AccessType = iota
	// AccessWARL is write-any-read-legal.
	AccessWARL
	// AccessWLRL is write-legal-read-legal.
	AccessWLRL
	// AccessWPRI is a reserved field that preserves writes, reads ignored.
	AccessWPRI
	// AccessWIRI is a reserved field that ignores writes, reads ignored.
	AccessWIRI
	// AccessROConstant is read-only with a fixed value.
	AccessROConstant
	// AccessROVariable is read-only with a variable value.
	AccessROVariable
)

// String returns the lowercase schema token for the access type, or the
// empty string for AccessUnset.
func (a AccessType) String() string {
	switch a {
	case AccessWARL:
		return "warl"
	case AccessWLRL:
		return "wlrl"
	case AccessWPRI:
		return "wpri"
	case AccessWIRI:
		return "wiri"
	case AccessROConstant:
		return "ro_constant"
	case AccessROVariable:
		return "ro_variable"
	default:
		return ""
	}
}
