// Package validation validates request payloads.
//
// Struct tag validation runs go-playground/validator with json field names
// and the custom rules registered here:
//
//	mobile   phone number shaped NN(N)-NNN(N)-NNNN
//	weburl   absolute http or https URL
//	urllist  semicolon separated list of weburl values
//
// Validator collects errors for inputs that are not structs, such as query
// parameters.
package validation
