// Package errors provides structured, actionable error messages for the
// peerwire command line.
//
// Library packages return plain sentinel errors. The CLI converts them into
// coded errors at the edge so that every failure a user sees carries a
// stable code, a plain-language explanation and, where possible, a hint.
//
// # Error Codes
//
// Codes are grouped by category:
//
//   - PW001-PW009: configuration
//   - PW010-PW019: message encoding
//   - PW020-PW029: frame inspection
//   - PW030-PW039: transport
//   - PW040-PW049: command line usage
//
// # Usage
//
//	err := errors.New("PW011").
//	    WithDetail("get frames have no compressible flag").
//	    WithSuggestion("Use --mode plain for this op")
//
//	fmt.Print(err.Format())
//	// Output:
//	// ERROR PW011: Op is not compressible
//	//
//	//   get frames have no compressible flag
//	//
//	//   Hint: Use --mode plain for this op
package errors
