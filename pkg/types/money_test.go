package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    string
		null    bool
		wantErr error
	}{
		{name: "blank is null", input: "   ", null: true},
		{name: "integer", input: "12", want: "12.00"},
		{name: "rounds", input: "19.999", want: "20.00"},
		{name: "trims", input: " 3.5 ", want: "3.50"},
		{name: "zero allowed", input: "0", want: "0.00"},
		{name: "negative", input: "-1", wantErr: ErrMoneyNegative},
		{name: "garbage", input: "ten", wantErr: ErrMoneyNotNumeric},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseMoney(tc.input)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			if tc.null {
				assert.False(t, got.Valid)
				assert.Nil(t, FormatMoney(got))
				return
			}
			require.True(t, got.Valid)
			assert.Equal(t, tc.want, *FormatMoney(got))
		})
	}
}

func TestParseMoneyPtrNil(t *testing.T) {
	got, err := ParseMoneyPtr(nil)
	require.NoError(t, err)
	assert.False(t, got.Valid)
}

func TestNullableText(t *testing.T) {
	blank := "  "
	value := " shelf A "
	assert.Nil(t, NullableText(nil))
	assert.Nil(t, NullableText(&blank))
	require.NotNil(t, NullableText(&value))
	assert.Equal(t, "shelf A", *NullableText(&value))
}

func TestFoldASCII(t *testing.T) {
	assert.Equal(t, "jordan rookie", FoldASCII("Jordan ROOKIE"))
	assert.Equal(t, "Éclair", FoldASCII("Éclair"))
	assert.Equal(t, "100% cotton", FoldASCII("100% Cotton"))
}
