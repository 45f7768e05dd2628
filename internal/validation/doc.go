// Package validation checks experiment definitions before they are registered.
//
// Structural constraints (required fields, numeric ranges) are declared as
// go-playground/validator struct tags on the types package; domain rules that
// span fields (weights summing to one, a control variant, unique variant IDs,
// well-formed segmentation) are checked here. All problems are collected and
// reported together in a single *types.ValidationError.
package validation
