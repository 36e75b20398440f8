package redis

import (
	"context"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/sportdex/internal/db"
)

// SugAddMulti adds completion entries via pipelined FT.SUGADD.
func (s *Store) SugAddMulti(ctx context.Context, key string, items []db.Suggestion) []error {
	if len(items) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, len(items))
	for i, item := range items {
		score := item.Score
		if score <= 0 {
			score = 1
		}
		args := []string{item.Text, strconv.FormatFloat(score, 'f', -1, 64)}
		if item.Payload != "" {
			args = append(args, "PAYLOAD", item.Payload)
		}
		cmds[i] = s.b().Arbitrary("FT.SUGADD").Keys(key).Args(args...).Build()
	}

	return wrapEach(db.OpSugAdd, s.doMulti(ctx, cmds))
}

// SugGet returns up to limit completions of prefix with their payloads.
// A missing dictionary or no match yields an empty slice.
func (s *Store) SugGet(ctx context.Context, key, prefix string, limit int) ([]db.Suggestion, error) {
	if prefix == "" || limit <= 0 {
		return nil, nil
	}

	cmd := s.b().Arbitrary("FT.SUGGET").Keys(key).
		Args(prefix, "WITHPAYLOADS", "MAX", strconv.Itoa(limit)).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		return nil, opError(db.OpSugGet, err)
	}

	// 2-stride: [text1, payload1, text2, payload2, ...]
	out := make([]db.Suggestion, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		text, err := raw[i].ToString()
		if err != nil {
			continue
		}
		payload, err := raw[i+1].ToString()
		if err != nil && !rueidis.IsRedisNil(err) {
			continue
		}
		out = append(out, db.Suggestion{Text: text, Payload: payload})
	}
	return out, nil
}
