package main

import (
	"chat-collect/domain"
	"chat-collect/internal"
	"encoding/json"
	"fmt"
	"strings"
)

// EventMapper shows the content of the stored events and released chatrooms
// in the store inspector.
func EventMapper(key string, val []byte) internal.InspectRow {
	row := internal.DefaultMapper(key, val)

	switch row.Type {
	case "EVENT":
		var evt domain.Event
		if err := json.Unmarshal(val, &evt); err != nil {
			row.Detail = "Error: unmarshal failed"
			return row
		}
		row.Detail = fmt.Sprintf("[%s] %s: %s", evt.Type, evt.From, evt.Body)
	case "RELEASED":
		var summary domain.ChatroomSummary
		if err := json.Unmarshal(val, &summary); err != nil {
			row.Detail = "Error: unmarshal failed"
			return row
		}
		row.Detail = fmt.Sprintf("users=%s events=%d messages=%d polls=%d",
			strings.Join(summary.Users, ","), summary.Events, summary.Messages, summary.PollRequests)
	}
	return row
}
