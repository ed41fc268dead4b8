package specification_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/specql/composable-specs-go/specification"
)

// thresholdSpec builds a leaf whose outcome depends on both the entity and a
// generated parameter, so the properties exercise all four truth table rows.
func thresholdSpec(threshold int) specification.Spec[int] {
	return specification.Satisfies(func(n int) bool { return n > threshold })
}

func Test_Property_CombinatorsAgreeWithBooleanAlgebra(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("combined evaluation equals boolean combination of child evaluations", prop.ForAll(
		func(leftThreshold, rightThreshold, entity int) bool {
			left := thresholdSpec(leftThreshold)
			right := thresholdSpec(rightThreshold)

			a := left.IsSatisfiedBy(entity)
			b := right.IsSatisfiedBy(entity)

			return left.And(right).IsSatisfiedBy(entity) == (a && b) &&
				left.Or(right).IsSatisfiedBy(entity) == (a || b) &&
				left.Nand(right).IsSatisfiedBy(entity) == !(a && b) &&
				left.Nor(right).IsSatisfiedBy(entity) == !(a || b) &&
				left.Xor(right).IsSatisfiedBy(entity) == (a != b) &&
				left.Xnor(right).IsSatisfiedBy(entity) == (a == b)
		},
		gen.IntRange(-100, 100),
		gen.IntRange(-100, 100),
		gen.IntRange(-200, 200),
	))

	properties.TestingRun(t)
}

func Test_Property_DerivedCombinatorsMatchTheirDefinitions(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("nand equals not(and), nor equals not(or), xnor equals not(xor)", prop.ForAll(
		func(leftThreshold, rightThreshold, entity int) bool {
			left := thresholdSpec(leftThreshold)
			right := thresholdSpec(rightThreshold)

			return left.Nand(right).IsSatisfiedBy(entity) == left.And(right).Not().IsSatisfiedBy(entity) &&
				left.Nor(right).IsSatisfiedBy(entity) == left.Or(right).Not().IsSatisfiedBy(entity) &&
				left.Xnor(right).IsSatisfiedBy(entity) == left.Xor(right).Not().IsSatisfiedBy(entity)
		},
		gen.IntRange(-100, 100),
		gen.IntRange(-100, 100),
		gen.IntRange(-200, 200),
	))

	properties.TestingRun(t)
}

func Test_Property_DoubleNegationIsIdentity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("not(not(s)) evaluates like s", prop.ForAll(
		func(threshold, entity int) bool {
			s := thresholdSpec(threshold)

			return s.Not().Not().IsSatisfiedBy(entity) == s.IsSatisfiedBy(entity)
		},
		gen.IntRange(-100, 100),
		gen.IntRange(-200, 200),
	))

	properties.TestingRun(t)
}

func Test_Property_AndOrAreCommutativeOnEvaluation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("and and or evaluate order independently", prop.ForAll(
		func(leftThreshold, rightThreshold, entity int) bool {
			left := thresholdSpec(leftThreshold)
			right := thresholdSpec(rightThreshold)

			return left.And(right).IsSatisfiedBy(entity) == right.And(left).IsSatisfiedBy(entity) &&
				left.Or(right).IsSatisfiedBy(entity) == right.Or(left).IsSatisfiedBy(entity)
		},
		gen.IntRange(-100, 100),
		gen.IntRange(-100, 100),
		gen.IntRange(-200, 200),
	))

	properties.TestingRun(t)
}

func Test_Property_QuantifierCountsMatchManualCounting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	type holder struct {
		values []int
	}

	positive := specification.Satisfies(func(n int) bool { return n > 0 })

	properties.Property("quantifier outcomes agree with a manual count of matching elements", prop.ForAll(
		func(values []int, threshold int) bool {
			entity := holder{values: values}
			selector := func(h holder) []int { return h.values }

			matching := 0
			for _, v := range values {
				if v > 0 {
					matching++
				}
			}

			return specification.Any("values", selector, positive).IsSatisfiedBy(entity) == (matching > 0) &&
				specification.All("values", selector, positive).IsSatisfiedBy(entity) == (matching == len(values)) &&
				specification.AtLeast("values", selector, positive, threshold).IsSatisfiedBy(entity) == (matching >= threshold) &&
				specification.AtMost("values", selector, positive, threshold).IsSatisfiedBy(entity) == (matching <= threshold)
		},
		gen.SliceOf(gen.IntRange(-10, 10)),
		gen.IntRange(0, 12),
	))

	properties.TestingRun(t)
}
