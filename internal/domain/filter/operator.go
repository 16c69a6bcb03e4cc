package filter

// Op is a filter operator token as it appears in query parameters,
// e.g. price[gte]=100 carries the token "gte".
type Op string

const (
	OpEq       Op = "eq"
	OpNe       Op = "ne"
	OpGt       Op = "gt"
	OpGte      Op = "gte"
	OpLt       Op = "lt"
	OpLte      Op = "lte"
	OpLike     Op = "like"
	OpNotLike  Op = "nlike"
	OpStarts   Op = "starts"
	OpEnds     Op = "ends"
	OpIn       Op = "in"
	OpNotIn    Op = "nin"
	OpBetween  Op = "between"
	OpNBetween Op = "nbetween"
	OpNull     Op = "null"
	OpNotNull  Op = "nnull"
	OpDate     Op = "date"
	OpMonth    Op = "month"
	OpYear     Op = "year"
)

// knownOps is the closed set of operator tokens the engine accepts.
var knownOps = map[Op]struct{}{
	OpEq: {}, OpNe: {}, OpGt: {}, OpGte: {}, OpLt: {}, OpLte: {},
	OpLike: {}, OpNotLike: {}, OpStarts: {}, OpEnds: {},
	OpIn: {}, OpNotIn: {}, OpBetween: {}, OpNBetween: {},
	OpNull: {}, OpNotNull: {}, OpDate: {}, OpMonth: {}, OpYear: {},
}

// ResolveOp maps a raw token to an operator. The second return reports
// whether the token is recognized; an unrecognized token in operator
// position is a request error, not a droppable field.
func ResolveOp(token string) (Op, bool) {
	op := Op(token)
	_, ok := knownOps[op]
	return op, ok
}

// NeedsList reports whether the operator consumes a list of values
// rather than a single scalar.
func (o Op) NeedsList() bool {
	switch o {
	case OpIn, OpNotIn, OpBetween, OpNBetween:
		return true
	}
	return false
}

// IgnoresValue reports whether the operator's right-hand side is
// irrelevant (presence of the key alone triggers the predicate).
func (o Op) IgnoresValue() bool {
	return o == OpNull || o == OpNotNull
}
