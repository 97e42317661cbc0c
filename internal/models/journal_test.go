package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEntryText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr error
	}{
		{
			name: "valid entry",
			text: "Had a calm walk in the park today.",
			want: "Had a calm walk in the park today.",
		},
		{
			name: "trims surrounding whitespace",
			text: "  \n Felt pretty good this morning. \t ",
			want: "Felt pretty good this morning.",
		},
		{
			name:    "too short",
			text:    "ok today",
			wantErr: ErrEntryTooShort,
		},
		{
			name:    "whitespace padding does not count toward minimum",
			text:    "   hi    \n\n\t   ",
			wantErr: ErrEntryTooShort,
		},
		{
			name: "exactly at minimum",
			text: strings.Repeat("a", MinEntryLength),
			want: strings.Repeat("a", MinEntryLength),
		},
		{
			name: "exactly at maximum",
			text: strings.Repeat("b", MaxEntryLength),
			want: strings.Repeat("b", MaxEntryLength),
		},
		{
			name:    "too long",
			text:    strings.Repeat("c", MaxEntryLength+1),
			wantErr: ErrEntryTooLong,
		},
		{
			name:    "empty",
			text:    "",
			wantErr: ErrEntryTooShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateEntryText(tt.text)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
