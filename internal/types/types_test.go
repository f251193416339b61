package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	results := []MatchResult{
		{Status: StatusExact},
		{Status: StatusExact},
		{Status: StatusReview},
		{Status: StatusDuplicate},
		{Status: StatusNotFound},
		{Status: StatusNotFound},
	}

	s := Summarize(results, 20, 30)
	assert.Equal(t, 6, s.Total)
	assert.Equal(t, 2, s.Found)
	assert.Equal(t, 1, s.Review)
	assert.Equal(t, 1, s.Duplicate)
	assert.Equal(t, 2, s.NotFound)
	assert.Equal(t, 20, s.LedgerTotal)
	assert.Equal(t, 30, s.BankTotal)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, 0, 0)
	assert.Zero(t, s.Total)
	assert.Zero(t, s.NotFound)
}
