package matching

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisLocationStore reads live worker positions from a Redis GEO set.
// Worker apps update their member position independently of this service;
// each request takes a point-in-time snapshot via a single GEOPOS call.
type RedisLocationStore struct {
	rdb *redis.Client
	key string
}

// NewRedisLocationStore returns a LocationStore over the given GEO set key.
func NewRedisLocationStore(rdb *redis.Client, key string) *RedisLocationStore {
	return &RedisLocationStore{rdb: rdb, key: key}
}

// Positions fetches coordinates for the given worker ids in one batched
// GEOPOS. Workers missing from the set come back as nil entries and are
// left out of the map.
func (s *RedisLocationStore) Positions(ctx context.Context, workerIDs []int64) (map[int64]Coordinates, error) {
	members := make([]string, len(workerIDs))
	for i, id := range workerIDs {
		members[i] = strconv.FormatInt(id, 10)
	}

	geo, err := s.rdb.GeoPos(ctx, s.key, members...).Result()
	if err != nil {
		return nil, fmt.Errorf("geopos %s: %w", s.key, err)
	}

	positions := make(map[int64]Coordinates, len(workerIDs))
	for i, pos := range geo {
		if pos == nil {
			continue
		}
		positions[workerIDs[i]] = Coordinates{
			Latitude:  pos.Latitude,
			Longitude: pos.Longitude,
		}
	}
	return positions, nil
}
