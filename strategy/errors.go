package strategy

import "errors"

// ErrNoVariants indicates that no variants were provided for allocation.
var ErrNoVariants = errors.New("no variants available for allocation")
