package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_KeepsDocumentOrder(t *testing.T) {
	text := "Invoices are due in thirty days. Late invoices incur a small fee today. " +
		"The office cat is named Max. Invoices must list the order number."
	s := NewFrequencySummarizer()

	out, err := s.Summarize(text, 2)
	require.NoError(t, err)
	assert.Equal(t, "Late invoices incur a small fee today. Invoices must list the order number.", out)
}

func TestSummarize_FewerSentencesThanMax(t *testing.T) {
	s := NewFrequencySummarizer()
	out, err := s.Summarize("Only one sentence here.", 5)
	require.NoError(t, err)
	assert.Equal(t, "Only one sentence here.", out)
}

func TestSummarize_NoPunctuation(t *testing.T) {
	s := NewFrequencySummarizer()
	out, err := s.Summarize("Name Qty\napples 12  pears 3 ", 3)
	require.NoError(t, err)
	assert.Equal(t, "Name Qty apples 12 pears 3", out)

	long := strings.Repeat("x ", 400)
	out, err = s.Summarize(long, 3)
	require.NoError(t, err)
	assert.Equal(t, 281, len([]rune(out)))
}
