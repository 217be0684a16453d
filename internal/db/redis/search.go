package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/labsearch/internal/db"
	"github.com/kailas-cloud/labsearch/internal/domain/search/query"
)

// Search runs a paginated FT.SEARCH. Every term must occur as an infix in some TEXT field.
func (s *Store) Search(ctx context.Context, q *db.Query) (*db.SearchResult, error) {
	if q.Index == "" {
		return nil, fmt.Errorf("index name is required")
	}

	args := []string{s.ftName(q.Index), buildQuery(q.Query)}

	if srt, ok := q.Query.Sort(); ok {
		dir := "ASC"
		if srt.Order == query.Desc {
			dir = "DESC"
		}
		args = append(args, "SORTBY", srt.Field, dir)
	}

	args = append(args,
		"LIMIT", strconv.Itoa(q.Query.Offset()), strconv.Itoa(q.Query.Size()),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, wrapErr(db.OpSearch, err)
	}

	return parseSearchResult(raw, s.docPrefix(q.Index))
}

// buildQuery renders a compiled query in RediSearch syntax: "*" or "*tok1* *tok2*"
// (space is an implicit AND).
func buildQuery(c query.Compiled) string {
	if c.MatchAll() {
		return query.MatchAllToken
	}
	terms := c.Terms()
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = "*" + escapeQuery(t) + "*"
	}
	return strings.Join(parts, " ")
}

// --- Result parsing ---

func parseSearchResult(raw []rueidis.RedisMessage, keyPrefix string) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/2)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, toEntry(strings.TrimPrefix(key, keyPrefix), parseFieldPairs(fields)))
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

// toEntry drops exact twins and decodes the attribute list.
func toEntry(key string, fields map[string]string) db.SearchEntry {
	entry := db.SearchEntry{Key: key, Fields: make(map[string]string, len(fields))}
	for k, v := range fields {
		if base, ok := strings.CutSuffix(k, ExactSuffix); ok {
			if _, hasBase := fields[base]; hasBase {
				continue
			}
		}
		entry.Fields[k] = v
	}

	if raw, ok := entry.Fields[attributesField]; ok {
		var attrs []db.Attribute
		if err := json.Unmarshal([]byte(raw), &attrs); err == nil {
			entry.Attributes = attrs
			delete(entry.Fields, attributesField)
		}
	}
	return entry
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Query helpers ---

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
	`.`, `\.`,
	`,`, `\,`,
	`/`, `\/`,
	`#`, `\#`,
	`&`, `\&`,
	`?`, `\?`,
)
