// Package redisstore offers the NimbleDB key/value operations on top of
// Redis. Spaces become key prefixes.
package redisstore

import (
	"context"
	"strconv"

	"github.com/Eugene-Usachev/fastbytes"
	"github.com/redis/rueidis"
	"github.com/sirupsen/logrus"

	"github.com/Eugene-Usachev/go-expect"
	"github.com/Eugene-Usachev/go-expect/internal/status"
)

type Config struct {
	Addrs []string
	Log   *logrus.Entry
}

type Store struct {
	client rueidis.Client
	log    *logrus.Entry
}

// New connects to Redis.
func New(cfg Config) expect.Expect[*Store] {
	if cfg.Log == nil {
		cfg.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		DisableCache: true,
	})
	if err != nil {
		cfg.Log.WithError(err).Error("Error connecting to Redis")
		return expect.Err[*Store](status.IO("redis", err))
	}
	return expect.Ok(&Store{
		client: client,
		log:    cfg.Log.WithField("component", "redisstore"),
	})
}

func (s *Store) Close() {
	s.client.Close()
}

// Destroy closes the store when the Expect holding it is destroyed.
func (s *Store) Destroy() {
	if s == nil {
		return
	}
	s.Close()
}

// Key returns the Redis key of key in the space spaceId.
func Key(spaceId uint16, key []byte) string {
	return strconv.Itoa(int(spaceId)) + ":" + fastbytes.B2S(key)
}

func (s *Store) failure(op string, err error) expect.VoidError {
	if rueidis.IsRedisNil(err) {
		return expect.NewVoidError(status.NotFound)
	}
	s.log.WithError(err).WithField("op", op).Debug("Redis command failed")
	return status.IO(op, err)
}

func (s *Store) Ping(ctx context.Context) expect.VoidError {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return s.failure("ping", err)
	}
	return expect.VoidError{}
}

func (s *Store) Get(ctx context.Context, spaceId uint16, key []byte) expect.Expect[[]byte] {
	value, err := s.client.Do(ctx, s.client.B().Get().Key(Key(spaceId, key)).Build()).AsBytes()
	if err != nil {
		return expect.Err[[]byte](s.failure("get", err))
	}
	return expect.Ok(value)
}

// Insert stores value under key unless the key already exists.
func (s *Store) Insert(ctx context.Context, spaceId uint16, key, value []byte) expect.VoidError {
	cmd := s.client.B().Set().Key(Key(spaceId, key)).Value(fastbytes.B2S(value)).Nx().Build()
	err := s.client.Do(ctx, cmd).Error()
	switch {
	case err == nil:
		return expect.VoidError{}
	case rueidis.IsRedisNil(err):
		// SET NX answers nil when the key exists.
		return expect.NewVoidError(status.BadRequest)
	}
	return s.failure("insert", err)
}

func (s *Store) Set(ctx context.Context, spaceId uint16, key, value []byte) expect.VoidError {
	cmd := s.client.B().Set().Key(Key(spaceId, key)).Value(fastbytes.B2S(value)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return s.failure("set", err)
	}
	return expect.VoidError{}
}

func (s *Store) Delete(ctx context.Context, spaceId uint16, key []byte) expect.VoidError {
	deleted, err := s.client.Do(ctx, s.client.B().Del().Key(Key(spaceId, key)).Build()).AsInt64()
	if err != nil {
		return s.failure("delete", err)
	}
	if deleted == 0 {
		return expect.NewVoidError(status.NotFound)
	}
	return expect.VoidError{}
}
