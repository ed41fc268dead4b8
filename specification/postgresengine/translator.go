package postgresengine

import (
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	jsoniter "github.com/json-iterator/go"

	"github.com/specql/composable-specs-go/specification"
)

// whereFromTree translates an expression tree into a goqu WHERE expression.
//
// ref is the SQL fragment referring to the JSON document the subtree applies
// to: the payload column at the root, or a quantifier element alias inside a
// quantifier subquery. depth numbers the nested quantifier aliases so that
// quantifiers inside quantifiers never shadow each other.
//
// Trees containing opaque predicate leaves cannot be translated and yield
// specification.ErrUntranslatableExpression. Xor and Xnor are translated by
// boolean expansion even though they are outside the guaranteed node set.
func whereFromTree(node specification.TreeNode, ref string, depth int) (goqu.Expression, error) {
	switch n := node.(type) {
	case specification.BinaryNode:
		return binaryFromTree(n, ref, depth)

	case specification.UnaryNode:
		inner, err := whereFromTree(n.Inner(), ref, depth)
		if err != nil {
			return nil, err
		}

		return negate(inner), nil

	case specification.QuantifierNode:
		return quantifierFromTree(n, ref, depth)

	case specification.MatchNode:
		// COALESCE mirrors in-memory evaluation: an absent or null property
		// is matched as the empty string.
		return goqu.L(fmt.Sprintf("COALESCE(%s, '') ~ ?", textRefOf(ref, n.Field())), n.Pattern()), nil

	case specification.ComparisonNode:
		return comparisonFromTree(n, ref)

	default:
		return nil, fmt.Errorf("%w: %s node", specification.ErrUntranslatableExpression, node.Kind())
	}
}

func binaryFromTree(node specification.BinaryNode, ref string, depth int) (goqu.Expression, error) {
	left, leftErr := whereFromTree(node.Left(), ref, depth)
	if leftErr != nil {
		return nil, leftErr
	}

	right, rightErr := whereFromTree(node.Right(), ref, depth)
	if rightErr != nil {
		return nil, rightErr
	}

	switch node.Kind() {
	case specification.KindAnd:
		return goqu.And(left, right), nil
	case specification.KindOr:
		return goqu.Or(left, right), nil
	case specification.KindNand:
		return negate(goqu.And(left, right)), nil
	case specification.KindNor:
		return negate(goqu.Or(left, right)), nil
	case specification.KindXor:
		return exclusiveOr(left, right), nil
	case specification.KindXnor:
		return negate(exclusiveOr(left, right)), nil
	default:
		return nil, fmt.Errorf("%w: %s node", specification.ErrUntranslatableExpression, node.Kind())
	}
}

func quantifierFromTree(node specification.QuantifierNode, ref string, depth int) (goqu.Expression, error) {
	alias := fmt.Sprintf("item_%d", depth+1)
	collection := jsonRefOf(ref, node.CollectionField())

	inner, err := whereFromTree(node.ItemExpression(), alias, depth+1)
	if err != nil {
		return nil, err
	}

	// jsonb_array_elements yields no rows for an absent or null collection,
	// matching the nil-slice-behaves-as-empty evaluation semantics.
	switch node.Kind() {
	case specification.KindAny:
		return goqu.L(
			fmt.Sprintf("EXISTS (SELECT 1 FROM jsonb_array_elements(%s) AS %s WHERE ?)", collection, alias),
			inner,
		), nil

	case specification.KindAll:
		return goqu.L(
			fmt.Sprintf("NOT EXISTS (SELECT 1 FROM jsonb_array_elements(%s) AS %s WHERE NOT (?))", collection, alias),
			inner,
		), nil

	case specification.KindAtLeast:
		return goqu.L(
			fmt.Sprintf("(SELECT count(*) FROM jsonb_array_elements(%s) AS %s WHERE ?) >= %d",
				collection, alias, node.Threshold()),
			inner,
		), nil

	case specification.KindAtMost:
		return goqu.L(
			fmt.Sprintf("(SELECT count(*) FROM jsonb_array_elements(%s) AS %s WHERE ?) <= %d",
				collection, alias, node.Threshold()),
			inner,
		), nil

	default:
		return nil, fmt.Errorf("%w: %s node", specification.ErrUntranslatableExpression, node.Kind())
	}
}

func comparisonFromTree(node specification.ComparisonNode, ref string) (goqu.Expression, error) {
	switch node.Compare() {
	case specification.CompareEqual:
		return containmentOf(node, ref)

	case specification.CompareNotEqual:
		equal, err := containmentOf(node, ref)
		if err != nil {
			return nil, err
		}

		return negate(equal), nil

	case specification.CompareGreaterThan,
		specification.CompareGreaterOrEqual,
		specification.CompareLessThan,
		specification.CompareLessOrEqual:
		return orderedComparisonOf(node, ref)

	default:
		return nil, fmt.Errorf("%w: unknown comparison operator %q",
			specification.ErrUntranslatableExpression, node.Compare())
	}
}

// containmentOf builds a jsonb containment check for an equality comparison.
// Containment handles every JSON value type uniformly and can use a GIN index
// on the payload column.
func containmentOf(node specification.ComparisonNode, ref string) (goqu.Expression, error) {
	var toContain any
	if node.Field() == "" {
		toContain = node.Value()
	} else {
		toContain = map[string]any{node.Field(): node.Value()}
	}

	fragment, marshalErr := jsoniter.ConfigFastest.Marshal(toContain)
	if marshalErr != nil {
		return nil, errors.Join(specification.ErrBuildingQueryFailed, marshalErr)
	}

	return goqu.L(fmt.Sprintf("%s @> %s", jsonRefOf(ref, ""), castJsonb), string(fragment)), nil
}

// orderedComparisonOf builds an ordered comparison. Text values compare as
// text, numeric values are cast to numeric. Other value types have no defined
// ordering in JSON and cannot be translated.
func orderedComparisonOf(node specification.ComparisonNode, ref string) (goqu.Expression, error) {
	op := string(node.Compare())
	textRef := textRefOf(ref, node.Field())

	switch value := node.Value().(type) {
	case string:
		return goqu.L(fmt.Sprintf("%s %s ?", textRef, op), value), nil

	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return goqu.L(fmt.Sprintf("(%s)::numeric %s ?", textRef, op), value), nil

	default:
		return nil, fmt.Errorf("%w: ordered comparison on %T value",
			specification.ErrUntranslatableExpression, node.Value())
	}
}

func negate(inner goqu.Expression) goqu.Expression {
	return goqu.L("NOT (?)", inner)
}

// exclusiveOr expands xor into (l AND NOT r) OR (NOT l AND r), the portable
// form that needs nothing beyond and/or/not.
func exclusiveOr(left, right goqu.Expression) goqu.Expression {
	return goqu.Or(
		goqu.And(left, negate(right)),
		goqu.And(negate(left), right),
	)
}

// textRefOf renders the SQL fragment extracting a field of the referenced
// JSON document as text. The empty field name refers to the document itself,
// which inside a quantifier is the collection element.
func textRefOf(ref string, field specification.FieldNameString) string {
	if field == "" {
		return fmt.Sprintf("%s #>> '{}'", ref)
	}

	return fmt.Sprintf("%s->>'%s'", ref, field)
}

// jsonRefOf renders the SQL fragment extracting a field of the referenced
// JSON document as jsonb.
func jsonRefOf(ref string, field specification.FieldNameString) string {
	if field == "" {
		return ref
	}

	return fmt.Sprintf("%s->'%s'", ref, field)
}
