package textnorm

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigits(t *testing.T) {
	t.Run("persian_digits", func(t *testing.T) {
		assert.Equal(t, "0123456789", Digits("۰۱۲۳۴۵۶۷۸۹"))
	})

	t.Run("arabic_indic_digits", func(t *testing.T) {
		assert.Equal(t, "0123456789", Digits("٠١٢٣٤٥٦٧٨٩"))
	})

	t.Run("mixed_scripts", func(t *testing.T) {
		assert.Equal(t, "واریز 2452 به 100617", Digits("واریز ۲۴۵۲ به ١٠٠٦١٧"))
	})

	t.Run("ascii_untouched", func(t *testing.T) {
		assert.Equal(t, "abc 123", Digits("abc 123"))
	})
}

func TestToAmount(t *testing.T) {
	t.Run("grouped", func(t *testing.T) {
		v, ok := ToAmount("1,250,000")
		require.True(t, ok)
		assert.True(t, v.Equal(decimal.NewFromInt(1250000)))
	})

	t.Run("persian_digits_persian_comma", func(t *testing.T) {
		v, ok := ToAmount("۵۰۰،۰۰۰")
		require.True(t, ok)
		assert.True(t, v.Equal(decimal.NewFromInt(500000)))
	})

	t.Run("embedded_spaces", func(t *testing.T) {
		v, ok := ToAmount(" 750 000 ")
		require.True(t, ok)
		assert.True(t, v.Equal(decimal.NewFromInt(750000)))
	})

	t.Run("empty", func(t *testing.T) {
		_, ok := ToAmount("")
		assert.False(t, ok)
	})

	t.Run("non_numeric", func(t *testing.T) {
		_, ok := ToAmount("بستانکار")
		assert.False(t, ok)
	})
}

func TestNormalize(t *testing.T) {
	t.Run("arabic_letter_variants_fold", func(t *testing.T) {
		assert.Equal(t, Normalize("علي ملك"), Normalize("علی ملک"))
	})

	t.Run("zero_width_joiner_becomes_space", func(t *testing.T) {
		assert.Equal(t, "علی رضا", Normalize("علی\u200cرضا"))
	})

	t.Run("whitespace_collapses", func(t *testing.T) {
		assert.Equal(t, "حسن زارع", Normalize("  حسن \t  زارع "))
	})

	t.Run("latin_lowercased", func(t *testing.T) {
		assert.Equal(t, "gppc", Normalize("GPPC"))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "", Normalize(""))
	})
}

func TestStripNonDigits(t *testing.T) {
	assert.Equal(t, "2337", StripNonDigits("2337GPPC"))
	assert.Equal(t, "04120601", StripNonDigits("-0412-0601-"))
	assert.Equal(t, "", StripNonDigits("شماره سند"))
}
