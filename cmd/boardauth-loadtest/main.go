package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/boardauth/jwt"
	"github.com/MrEthical07/boardauth/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type memberState struct {
	id    string
	token string
	mu    sync.Mutex
}

func main() {
	var (
		members     = flag.Int("members", 10000, "number of members to seed, one session each")
		concurrency = flag.Int("concurrency", 128, "number of concurrent workers")
		ops         = flag.Int("ops", 50000, "refresh operations in the rotation phase")
		races       = flag.Int("races", 2000, "tokens refreshed twice concurrently in the race phase")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "ba", "key prefix")
	)
	flag.Parse()

	if *members <= 0 || *concurrency <= 0 || *ops <= 0 || *races < 0 {
		fmt.Fprintln(os.Stderr, "members, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	signer, err := jwt.NewManager(jwt.Config{
		AccessTTL:     15 * time.Minute,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    []byte("loadtest-signing-key-loadtest-signing-key"),
		Issuer:        "boardauth-loadtest",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "jwt manager: %v\n", err)
		os.Exit(1)
	}
	sessions, err := session.NewManager(client, signer, session.Config{
		KeyPrefix: *prefix,
		OpTimeout: 2 * time.Second,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "session manager: %v\n", err)
		os.Exit(1)
	}

	states := make([]memberState, *members)
	fmt.Printf("seeding %d sessions...\n", *members)
	startSeed := time.Now()
	for i := range states {
		id := strconv.Itoa(i + 1)
		pair, err := sessions.IssueSession(ctx, id, "USER")
		if err != nil {
			fmt.Fprintf(os.Stderr, "issue failed: %v\n", err)
			os.Exit(1)
		}
		states[i] = memberState{id: id, token: pair.RefreshToken}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	rotateStats := runRotatePhase(ctx, sessions, states, *ops, *concurrency)
	winners, losers, anomalies := runRacePhase(ctx, sessions, states, *races, *concurrency)
	revokeStats := runRevokePhase(ctx, sessions, states, *concurrency)

	fmt.Println("---- results ----")
	printStats("rotate", rotateStats)
	fmt.Printf("race: pairs=%d winners=%d losers=%d anomalies=%d\n", *races, winners, losers, anomalies)
	printStats("revoke-all", revokeStats)
	if anomalies > 0 {
		os.Exit(1)
	}
}

func runRotatePhase(ctx context.Context, sessions *session.Manager, states []memberState, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				state := &states[r.Intn(len(states))]

				state.mu.Lock()
				t0 := time.Now()
				pair, _, err := sessions.Refresh(ctx, state.token)
				d := time.Since(t0)
				if err == nil {
					state.token = pair.RefreshToken
				} else {
					atomic.AddInt64(&failures, 1)
				}
				state.mu.Unlock()

				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

// runRacePhase refreshes the same token from two goroutines at once. Exactly
// one of each pair must win; anything else is an anomaly.
func runRacePhase(ctx context.Context, sessions *session.Manager, states []memberState, races, concurrency int) (winners, losers, anomalies int64) {
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i := 0; i < races; i++ {
		state := &states[i%len(states)]
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			state.mu.Lock()
			defer state.mu.Unlock()

			var (
				inner sync.WaitGroup
				won   int64
				lost  int64
				next  atomic.Value
			)
			for j := 0; j < 2; j++ {
				inner.Add(1)
				go func() {
					defer inner.Done()
					pair, _, err := sessions.Refresh(ctx, state.token)
					switch {
					case err == nil:
						atomic.AddInt64(&won, 1)
						next.Store(pair.RefreshToken)
					case errors.Is(err, session.ErrInvalidRefreshToken):
						atomic.AddInt64(&lost, 1)
					}
				}()
			}
			inner.Wait()

			atomic.AddInt64(&winners, won)
			atomic.AddInt64(&losers, lost)
			if won != 1 || lost != 1 {
				atomic.AddInt64(&anomalies, 1)
			}
			if tok, ok := next.Load().(string); ok {
				state.token = tok
			}
		}()
	}
	wg.Wait()
	return winners, losers, anomalies
}

func runRevokePhase(ctx context.Context, sessions *session.Manager, states []memberState, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, len(states))
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= len(states) {
					return
				}
				t0 := time.Now()
				err := sessions.RevokeAll(ctx, states[i].id)
				d := time.Since(t0)
				if err == nil {
					if n, _ := sessions.ActiveSessions(ctx, states[i].id); n != 0 {
						err = fmt.Errorf("member %s still has %d sessions", states[i].id, n)
					}
				}
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total, failures: failures}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	return samples[(len(samples)-1)*p/100]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
