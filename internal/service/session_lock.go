package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"interview_prep_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionLocker serialises writers per session id. Reads never lock.
type SessionLocker interface {
	Lock(ctx context.Context, sessionID string) (unlock func(), err error)
}

type lockEntry struct {
	ch   chan struct{}
	refs int
}

// LocalSessionLocker 进程内按会话 id 加锁，无人等待时回收条目
type LocalSessionLocker struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

func NewLocalSessionLocker() *LocalSessionLocker {
	return &LocalSessionLocker{entries: make(map[string]*lockEntry)}
}

func (l *LocalSessionLocker) Lock(ctx context.Context, sessionID string) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[sessionID]
	if !ok {
		e = &lockEntry{ch: make(chan struct{}, 1)}
		l.entries[sessionID] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-e.ch
				l.release(sessionID, e)
			})
		}, nil
	case <-ctx.Done():
		l.release(sessionID, e)
		return nil, ctx.Err()
	}
}

func (l *LocalSessionLocker) release(sessionID string, e *lockEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, sessionID)
	}
}

// held reports how many session ids currently have a lock entry.
func (l *LocalSessionLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// 只有持有者的 token 匹配时才删除
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisSessionLocker 多实例部署时使用的分布式锁 (SET NX PX)
type RedisSessionLocker struct {
	rdb   *redis.Client
	ttl   time.Duration
	retry time.Duration
}

func NewRedisSessionLocker(rdb *redis.Client, ttl time.Duration) *RedisSessionLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisSessionLocker{rdb: rdb, ttl: ttl, retry: 50 * time.Millisecond}
}

func sessionLockKey(sessionID string) string {
	return fmt.Sprintf("interview:lock:session:%s", sessionID)
}

func (l *RedisSessionLocker) Lock(ctx context.Context, sessionID string) (func(), error) {
	key := sessionLockKey(sessionID)
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire session lock: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Err(); err != nil {
				logger.L().Warn("release session lock failed", zap.String("session_id", sessionID), zap.Error(err))
			}
		})
	}, nil
}
