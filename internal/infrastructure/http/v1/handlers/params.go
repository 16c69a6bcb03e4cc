// Package handlers provides HTTP request handlers.
package handlers

import (
	"net/url"
	"strings"

	"shopper/internal/domain/filter"
)

// DecodeParams converts raw query values into the parser's parameter
// forms: "price[gte]=100" becomes an operator map under "price",
// repeated keys become a list, everything else stays a scalar.
func DecodeParams(values url.Values) filter.Params {
	params := filter.Params{}

	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}

		field, op, bracketed := splitBracket(key)
		if bracketed {
			setOp(params, field, op, vals[len(vals)-1])
			continue
		}

		// A scalar for a field that already has an operator map folds
		// into it as equality.
		if m, isMap := params[key].(map[string]string); isMap {
			m[string(filter.OpEq)] = vals[len(vals)-1]
			continue
		}

		if len(vals) > 1 {
			params[key] = vals
		} else {
			params[key] = vals[0]
		}
	}
	return params
}

func setOp(params filter.Params, field, op, value string) {
	switch existing := params[field].(type) {
	case map[string]string:
		existing[op] = value
	case string:
		params[field] = map[string]string{
			string(filter.OpEq): existing,
			op:                  value,
		}
	default:
		params[field] = map[string]string{op: value}
	}
}

// splitBracket parses "field[op]" keys. Anything malformed is treated
// as a literal parameter name.
func splitBracket(key string) (field, op string, ok bool) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return "", "", false
	}
	field = key[:open]
	op = key[open+1 : len(key)-1]
	if op == "" || strings.ContainsAny(op, "[]") {
		return "", "", false
	}
	return field, op, true
}
