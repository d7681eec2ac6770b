// Package source discovers and parses JSONL record files for bulk import.
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"sort"

	"github.com/theirongolddev/fincompass/internal/entry"
)

var typeKey = []byte(`"type"`)

// ParseResult holds the output of parsing a single JSONL file.
type ParseResult struct {
	File        string
	Entries     []Line[entry.EntryInput]
	Payouts     []Line[entry.PayoutInput]
	Lines       int
	Skipped     int
	ParseErrors int
	Err         error
}

// ParseFile reads a JSONL record file. Entry lines are deduplicated by date,
// keeping the last line per date. Payout lines are kept in file order.
//
// Routing by top-level "type" field:
//   - "entry"  → daily entry
//   - "payout" → payout adjustment
//   - everything else (including blank lines) → skip
func ParseFile(df DiscoveredFile) ParseResult {
	res := ParseResult{File: df.Path}

	f, err := os.Open(df.Path)
	if err != nil {
		res.Err = err
		return res
	}
	defer func() { _ = f.Close() }()

	byDate := make(map[string]Line[entry.EntryInput])

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		res.Lines++
		line := bytes.TrimSpace(scanner.Bytes())

		recType := extractTopLevelType(line)
		if recType == "" {
			res.Skipped++
			continue
		}

		var rec RawRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			res.ParseErrors++
			continue
		}

		switch recType {
		case TypeEntry:
			byDate[rec.Date] = Line[entry.EntryInput]{File: df.Path, Line: res.Lines, Input: rec.EntryInput()}
		case TypePayout:
			res.Payouts = append(res.Payouts, Line[entry.PayoutInput]{File: df.Path, Line: res.Lines, Input: rec.PayoutInput()})
		}
	}
	if err := scanner.Err(); err != nil {
		res.Err = err
	}

	res.Entries = make([]Line[entry.EntryInput], 0, len(byDate))
	for _, e := range byDate {
		res.Entries = append(res.Entries, e)
	}
	sort.Slice(res.Entries, func(i, j int) bool {
		return res.Entries[i].Input.Date < res.Entries[j].Input.Date
	})
	return res
}

// extractTopLevelType finds the "type" value at depth 1 without a full parse.
// Nested objects may carry their own "type" keys; those are ignored.
func extractTopLevelType(line []byte) string {
	depth := 0
	for i := 0; i < len(line); {
		switch line[i] {
		case '"':
			if depth == 1 && bytes.HasPrefix(line[i:], typeKey) {
				val, isKey := classifyType(line, i+len(typeKey))
				if isKey {
					return val
				}
			}
			i = skipJSONString(line, i)
		case '{':
			depth++
			i++
		case '}':
			depth--
			i++
		default:
			i++
		}
	}
	return ""
}

// classifyType checks whether pos follows a JSON key (expects : then value).
// isKey=false means "type" appeared as a value and the caller should continue.
func classifyType(line []byte, pos int) (val string, isKey bool) {
	i := skipSpaces(line, pos)
	if i >= len(line) || line[i] != ':' {
		return "", false
	}
	i = skipSpaces(line, i+1)
	if i >= len(line) || line[i] != '"' {
		return "", true
	}
	i++

	end := bytes.IndexByte(line[i:], '"')
	if end < 0 || end > 20 {
		return "", true
	}
	v := string(line[i : i+end])
	switch v {
	case TypeEntry, TypePayout:
		return v, true
	}
	return "", true
}

// skipJSONString advances past a JSON string starting at the opening quote.
//
//nolint:gosec // manual bounds checking throughout
func skipJSONString(line []byte, i int) int {
	i++
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1
		default:
			i++
		}
	}
	return i
}

func skipSpaces(line []byte, i int) int {
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return i
}
