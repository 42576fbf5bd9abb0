package stats

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/tortaquiz/internal/db/repository"
)

// Hash fields shared by the totals, daily and per-partition hashes.
const (
	fieldServed             = "served"
	fieldFromCache          = "from_cache"
	fieldGeneratedBatches   = "generated_batches"
	fieldGeneratedQuestions = "generated_questions"
)

// Counters is one aggregate of served and generated questions.
type Counters struct {
	Served             int64 `json:"served"`
	FromCache          int64 `json:"fromCache"`
	GeneratedBatches   int64 `json:"generatedBatches"`
	GeneratedQuestions int64 `json:"generatedQuestions"`
}

// PartitionStats is the usage of one (theme, difficulty, age group) pool.
type PartitionStats struct {
	Theme      string `json:"theme"`
	Difficulty string `json:"difficulty"`
	AgeGroup   string `json:"ageGroup"`
	Counters
}

// Snapshot is the payload served by GET /v1/stats.
type Snapshot struct {
	Totals      Counters         `json:"totals"`
	Today       Counters         `json:"today"`
	Partitions  []PartitionStats `json:"partitions"`
	RetrievedAt string           `json:"retrievedAt"`
}

// Client is the subset of go-redis used by the service.
type Client interface {
	TxPipeline() redis.Pipeliner
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
}

var _ Client = (*redis.Client)(nil)

// ServiceOptions configures key layout and retention.
type ServiceOptions struct {
	KeyPrefix string
	DailyTTL  time.Duration
}

// Service keeps usage counters in Redis hashes.
type Service struct {
	redis    Client
	prefix   string
	dailyTTL time.Duration
	now      func() time.Time
	logger   zerolog.Logger
}

func NewService(client Client, logger zerolog.Logger, opts ServiceOptions) *Service {
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = "tq:stats"
	}
	ttl := opts.DailyTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Service{
		redis:    client,
		prefix:   prefix,
		dailyTTL: ttl,
		now:      time.Now,
		logger:   logger.With().Str("component", "stats").Logger(),
	}
}

// RecordServed counts one delivered question. batchSize is the number of rows the request
// generated, zero when the question came from the pool.
func (s *Service) RecordServed(ctx context.Context, p repository.Partition, fromCache bool, batchSize int) error {
	incr := map[string]int64{fieldServed: 1}
	if fromCache {
		incr[fieldFromCache] = 1
	}
	if batchSize > 0 {
		incr[fieldGeneratedBatches] = 1
		incr[fieldGeneratedQuestions] = int64(batchSize)
	}

	partition := partitionMember(p)
	dailyKey := s.dailyKey(s.now())

	pipe := s.redis.TxPipeline()
	for _, key := range []string{s.totalsKey(), dailyKey, s.partitionKey(partition)} {
		for field, n := range incr {
			pipe.HIncrBy(ctx, key, field, n)
		}
	}
	pipe.Expire(ctx, dailyKey, s.dailyTTL)
	pipe.SAdd(ctx, s.partitionsKey(), partition)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record served question: %w", err)
	}
	return nil
}

// Snapshot reads totals, today's counters and every known partition.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	now := s.now()

	totals, err := s.readCounters(ctx, s.totalsKey())
	if err != nil {
		return Snapshot{}, err
	}
	today, err := s.readCounters(ctx, s.dailyKey(now))
	if err != nil {
		return Snapshot{}, err
	}

	members, err := s.redis.SMembers(ctx, s.partitionsKey()).Result()
	if err != nil {
		return Snapshot{}, fmt.Errorf("list partitions: %w", err)
	}
	sort.Strings(members)

	partitions := make([]PartitionStats, 0, len(members))
	for _, member := range members {
		parts, ok := splitPartitionMember(member)
		if !ok {
			s.logger.Warn().Str("member", member).Msg("skipping malformed partition entry")
			continue
		}
		counters, err := s.readCounters(ctx, s.partitionKey(member))
		if err != nil {
			return Snapshot{}, err
		}
		partitions = append(partitions, PartitionStats{
			Theme:      parts[0],
			Difficulty: parts[1],
			AgeGroup:   parts[2],
			Counters:   counters,
		})
	}

	return Snapshot{
		Totals:      totals,
		Today:       today,
		Partitions:  partitions,
		RetrievedAt: now.UTC().Format(time.RFC3339),
	}, nil
}

func (s *Service) readCounters(ctx context.Context, key string) (Counters, error) {
	data, err := s.redis.HGetAll(ctx, key).Result()
	if err != nil {
		return Counters{}, fmt.Errorf("read %s: %w", key, err)
	}
	return Counters{
		Served:             parseInt(data[fieldServed]),
		FromCache:          parseInt(data[fieldFromCache]),
		GeneratedBatches:   parseInt(data[fieldGeneratedBatches]),
		GeneratedQuestions: parseInt(data[fieldGeneratedQuestions]),
	}, nil
}

func (s *Service) totalsKey() string {
	return s.prefix + ":totals"
}

func (s *Service) dailyKey(t time.Time) string {
	return fmt.Sprintf("%s:daily:%s", s.prefix, t.UTC().Format("2006-01-02"))
}

func (s *Service) partitionsKey() string {
	return s.prefix + ":partitions"
}

func (s *Service) partitionKey(member string) string {
	return fmt.Sprintf("%s:partition:%s", s.prefix, member)
}

// partitionMember joins the query-escaped fields with "|". Escaped fields never contain "|".
func partitionMember(p repository.Partition) string {
	return url.QueryEscape(p.Theme) + "|" + url.QueryEscape(p.Difficulty) + "|" + url.QueryEscape(p.AgeGroup)
}

func splitPartitionMember(member string) ([3]string, bool) {
	var out [3]string
	parts := strings.Split(member, "|")
	if len(parts) != 3 {
		return out, false
	}
	for i, part := range parts {
		v, err := url.QueryUnescape(part)
		if err != nil {
			return out, false
		}
		out[i] = v
	}
	return out, true
}

func parseInt(val string) int64 {
	if val == "" {
		return 0
	}
	i, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}
	return i
}
