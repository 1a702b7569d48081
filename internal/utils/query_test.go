package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQueryList(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"selected=a1,b2", []string{"a1", "b2"}},
		{"selected=a1&selected=b2", []string{"a1", "b2"}},
		{"selected=a1,+,b2&selected=c3", []string{"a1", "b2", "c3"}},
		{"other=x", nil},
	}
	for _, tc := range cases {
		q, err := url.ParseQuery(tc.raw)
		assert.NoError(t, err)
		assert.Equal(t, tc.want, ParseQueryList(q, "selected"), tc.raw)
	}
}
