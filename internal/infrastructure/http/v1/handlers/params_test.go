package handlers

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopper/internal/domain/filter"
)

func TestDecodeParams(t *testing.T) {
	values, err := url.ParseQuery("status=active&price[gte]=100&price[lte]=200&id=1&id=2&sort=-price")
	require.NoError(t, err)

	params := DecodeParams(values)

	assert.Equal(t, "active", params["status"])
	assert.Equal(t, map[string]string{"gte": "100", "lte": "200"}, params["price"])
	assert.Equal(t, []string{"1", "2"}, params["id"])
	assert.Equal(t, "-price", params["sort"])
}

func TestDecodeParams_ScalarFoldsIntoOperatorMap(t *testing.T) {
	params := DecodeParams(url.Values{
		"price":      {"99"},
		"price[lte]": {"200"},
	})

	m, ok := params["price"].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "99", m[string(filter.OpEq)])
	assert.Equal(t, "200", m["lte"])
}

func TestDecodeParams_MalformedBracketsAreLiteralKeys(t *testing.T) {
	params := DecodeParams(url.Values{
		"[gte]":    {"1"},
		"price[]":  {"2"},
		"price[a]": {"3"},
	})

	assert.Equal(t, "1", params["[gte]"])
	assert.Equal(t, "2", params["price[]"])
	assert.Equal(t, map[string]string{"a": "3"}, params["price"])
}
