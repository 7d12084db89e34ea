// Package search parses terminal search commands into structured
// queries for the transcript index.
package search

import (
	"strconv"
	"strings"

	"auction-chat/domain"
)

// Query represents the structured parameters of a transcript search.
// It decouples the raw terminal input from the index engine requirements.
type Query struct {
	RawInput string        // The original command typed by the user
	Terms    string        // The actual text to search in Bluge
	Room     domain.RoomID // Restrict the search to one auction room
	Limit    int           // Number of results
}

const defaultLimit = 10

// NewQuery parses a raw command line to extract flag-style arguments.
// Example: /find invoice paid --room auction-12 --limit 5
func NewQuery(input string) *Query {
	query := &Query{
		RawInput: input,
		Limit:    defaultLimit,
	}

	parts := strings.Fields(input)
	var textTerms []string

	for i := 0; i < len(parts); i++ {
		part := parts[i]

		if strings.HasPrefix(part, "--") && i+1 < len(parts) {
			key := strings.TrimPrefix(part, "--")
			val := parts[i+1]

			switch key {
			case "room":
				query.Room = domain.RoomID(val)
			case "limit":
				if limit, err := strconv.Atoi(val); err == nil && limit > 0 {
					query.Limit = limit
				}
			}
			i++ // Skip the value part in next iteration
			continue
		}

		// If it's not a flag, it's a search term
		if !strings.HasPrefix(part, "/") {
			textTerms = append(textTerms, part)
		}
	}

	query.Terms = strings.Join(textTerms, " ")
	return query
}
