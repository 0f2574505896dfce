// Package directory keeps the recruiter-label directory: the set of
// recruiter names seen in the most recent successful spreadsheet fetch.
//
// The directory is a cache, not a record: it lives in Redis, is replaced
// wholesale after every successful fetch and is never merged with prior
// contents. Losing it costs nothing, the next poll rebuilds it.
package directory

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

const labelsKey = "candidatebot:recruiter_labels"

// Directory stores the label set in Redis so the registration handler can
// read a point-in-time snapshot while a poll cycle runs.
type Directory struct {
	rdb *redis.Client
}

// New returns a Directory backed by the given Redis client.
func New(rdb *redis.Client) *Directory {
	return &Directory{rdb: rdb}
}

// Replace swaps the directory contents for the given labels. The delete and
// re-add run in one transaction so readers never observe a half-built set.
func (d *Directory) Replace(ctx context.Context, labels []string) error {
	_, err := d.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, labelsKey)
		if len(labels) > 0 {
			members := make([]interface{}, len(labels))
			for i, l := range labels {
				members[i] = l
			}
			pipe.SAdd(ctx, labelsKey, members...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace label directory: %w", err)
	}
	return nil
}

// Labels returns the current directory, sorted. Empty when no fetch has
// succeeded yet.
func (d *Directory) Labels(ctx context.Context) ([]string, error) {
	labels, err := d.rdb.SMembers(ctx, labelsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("read label directory: %w", err)
	}
	sort.Strings(labels)
	return labels, nil
}
