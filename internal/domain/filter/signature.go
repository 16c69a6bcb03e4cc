package filter

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
)

// escapeTerm neutralizes the encoding's own separator characters so a
// filter value can never masquerade as extra terms. Without this,
// distinct requests could serialize identically and share a cache
// entry.
var escapeTerm = strings.NewReplacer(
	`\`, `\\`,
	"|", `\|`,
	"[", `\[`,
	"]", `\]`,
	",", `\,`,
	"=", `\=`,
).Replace

// Signature produces a stable cache key component for a parsed query.
// Two requests that differ only in filter ordering hash identically;
// sort order is part of the key because it changes the result order.
func Signature(q *ParsedQuery) string {
	var b strings.Builder

	b.WriteString("e=")
	b.WriteString(escapeTerm(q.Entity))

	terms := make([]string, 0, len(q.Clauses))
	for _, c := range q.Clauses {
		terms = append(terms, clauseTerm(c))
	}
	sort.Strings(terms)
	for _, t := range terms {
		b.WriteString("|f=")
		b.WriteString(t)
	}

	if q.Search != "" {
		b.WriteString("|q=")
		b.WriteString(escapeTerm(q.Search))
	}

	for _, s := range q.Sort {
		b.WriteString("|s=")
		if s.Desc {
			b.WriteByte('-')
		}
		b.WriteString(s.Field)
	}

	incs := append([]string(nil), q.Include...)
	sort.Strings(incs)
	for _, inc := range incs {
		b.WriteString("|i=")
		b.WriteString(inc)
	}

	flds := append([]string(nil), q.Fields...)
	sort.Strings(flds)
	for _, f := range flds {
		b.WriteString("|c=")
		b.WriteString(f)
	}

	b.WriteString("|p=")
	b.WriteString(strconv.Itoa(q.Page))
	b.WriteString("|pp=")
	b.WriteString(strconv.Itoa(q.PerPage))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func clauseTerm(c Clause) string {
	var b strings.Builder
	b.WriteString(escapeTerm(c.Field))
	b.WriteByte('[')
	b.WriteString(string(c.Op))
	b.WriteByte(']')
	if c.Op.NeedsList() {
		vals := make([]string, len(c.Values))
		for i, v := range c.Values {
			vals[i] = escapeTerm(v)
		}
		if c.Op == OpIn || c.Op == OpNotIn {
			// Set semantics: value order does not change the result.
			sort.Strings(vals)
		}
		b.WriteString(strings.Join(vals, ","))
	} else {
		b.WriteString(escapeTerm(c.Value))
	}
	return b.String()
}
