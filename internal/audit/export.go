package audit

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"
)

// WriteCSV serialises audit entries to CSV for export downloads.
func WriteCSV(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "At", "Actor", "Role", "Action", "Target", "Metadata"}); err != nil {
		return nil, err
	}
	for _, e := range entries {
		meta := ""
		if len(e.Metadata) > 0 {
			data, err := json.Marshal(e.Metadata)
			if err != nil {
				return nil, err
			}
			meta = string(data)
		}
		record := []string{
			e.ID.String(),
			e.CreatedAt.Format("2006-01-02 15:04:05"),
			formatID(e.ActorID),
			e.ActorRole,
			e.Action,
			formatID(e.TargetID),
			meta,
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	return buf.Bytes(), writer.Error()
}

func formatID(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}
