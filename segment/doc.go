// Package segment evaluates experiment segmentation rules against user profiles.
//
// A segmentation is a boolean combination (and / or / not) of criteria, each
// comparing one profile attribute with an operand:
//
//	spec := segment.Spec{
//	    Combinator: segment.And,
//	    Criteria: []segment.Criterion{
//	        {Attribute: "sessions_count", Operator: segment.OpGreaterOrEqual, Value: types.Int(5)},
//	        {Attribute: "country", Operator: segment.OpEqual, Value: types.String("DE")},
//	    },
//	}
//	pred, err := segment.Compile(spec)
//	if err != nil {
//	    return err
//	}
//	if pred.Matches(profile) {
//	    // eligible
//	}
//
// Evaluation never fails: a missing attribute, an operand of a different kind,
// or an operator that does not apply to the operand kind all evaluate to false.
package segment
