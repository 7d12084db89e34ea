package search

import (
	"testing"

	"github.com/stretchr/testify/require"

	"auction-chat/domain"
)

func TestNewQuery(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Query
	}{
		{
			name:  "Terms only",
			input: "/find vintage watch",
			expected: Query{
				Terms: "vintage watch",
				Limit: 10,
			},
		},
		{
			name:  "Room and limit flags",
			input: "/find invoice paid --room auction-12 --limit 5",
			expected: Query{
				Terms: "invoice paid",
				Room:  domain.RoomID("auction-12"),
				Limit: 5,
			},
		},
		{
			name:  "Invalid limit falls back to default",
			input: "/find shipping --limit oops",
			expected: Query{
				Terms: "shipping",
				Limit: 10,
			},
		},
		{
			name:  "Flags before terms",
			input: "/find --room auction-3 reserve price",
			expected: Query{
				Terms: "reserve price",
				Room:  domain.RoomID("auction-3"),
				Limit: 10,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewQuery(tt.input)
			require.Equal(t, tt.expected.Terms, got.Terms)
			require.Equal(t, tt.expected.Room, got.Room)
			require.Equal(t, tt.expected.Limit, got.Limit)
			require.Equal(t, tt.input, got.RawInput)
		})
	}
}
