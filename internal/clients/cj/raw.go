package cj

import "encoding/json"

// RawRecord is an unnormalized product entry as returned by the supplier.
// Field names vary across API versions, so records stay untyped bags until
// normalization.
type RawRecord map[string]any

// ExtractList flattens a raw list response of unknown envelope shape into a
// flat slice of records. The supplier has changed its envelope across
// versions; all observed shapes are tolerated simultaneously:
//
//	[...]
//	{"data": [...]}
//	{"data": {"list": [...]}}
//	{"data": {"content": [{"productList": [...]}]}}
//	{"list": [...]}
//
// Anything else yields an empty list.
func ExtractList(raw json.RawMessage) []RawRecord {
	if len(raw) == 0 {
		return nil
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}

	if arr, ok := payload.([]any); ok {
		return toRecords(arr)
	}

	envelope, ok := payload.(map[string]any)
	if !ok {
		return nil
	}

	switch data := envelope["data"].(type) {
	case []any:
		return toRecords(data)
	case map[string]any:
		// API 2.0 listV2 nests items under content[0].productList.
		if content, ok := data["content"].([]any); ok && len(content) > 0 {
			if first, ok := content[0].(map[string]any); ok {
				if productList, ok := first["productList"].([]any); ok {
					return toRecords(productList)
				}
			}
		}
		if list, ok := data["list"].([]any); ok {
			return toRecords(list)
		}
	}

	if list, ok := envelope["list"].([]any); ok {
		return toRecords(list)
	}

	return nil
}

// ExtractDetail pulls the single raw record out of a detail response,
// tolerating both `{data: record}` and a bare record.
func ExtractDetail(raw json.RawMessage) RawRecord {
	if len(raw) == 0 {
		return nil
	}

	var envelope map[string]any
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil
	}

	if data, ok := envelope["data"].(map[string]any); ok {
		return RawRecord(data)
	}
	if len(envelope) > 0 {
		return RawRecord(envelope)
	}
	return nil
}

func toRecords(items []any) []RawRecord {
	records := make([]RawRecord, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			records = append(records, RawRecord(m))
		}
	}
	return records
}
