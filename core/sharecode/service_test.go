package sharecode

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeRepo is an in-memory Repository; errs injects storage failures.
type fakeRepo struct {
	mu    sync.Mutex
	table map[string]Code
	errs  error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{table: make(map[string]Code)}
}

func (r *fakeRepo) SaveCode(ctx context.Context, code Code) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.errs != nil {
		return r.errs
	}
	r.table[code.Code] = code
	return nil
}

func (r *fakeRepo) GetCode(ctx context.Context, code string) (Code, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.errs != nil {
		return Code{}, r.errs
	}
	if c, ok := r.table[code]; ok {
		return c, nil
	}
	return Code{}, ErrNotFound
}

func (r *fakeRepo) DeleteCode(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.errs != nil {
		return r.errs
	}
	delete(r.table, code)
	return nil
}

func (r *fakeRepo) DeleteExpiredCodes(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.errs != nil {
		return 0, r.errs
	}
	var n int64
	for c, code := range r.table {
		if code.Expired(now) {
			delete(r.table, c)
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) failWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = err
}

func (r *fakeRepo) has(code string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.table[code]
	return ok
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	return NewService(repo, nopLogger{}), repo
}

// waitFor polls cond; Issue/Resolve write to the durable tier asynchronously.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("waitFor() condition not met")
}

func mockNow(t *testing.T, now time.Time) {
	t.Helper()
	nowFunc = func() time.Time { return now }
	t.Cleanup(func() { nowFunc = time.Now })
}

var testShare = NewShare{
	AssetURL: "https://cdn.test.cd/models/skeleton.glb",
	Title:    "Human Skeleton",
	Kind:     KindAR,
}

func Test_Service_IssueResolve(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	now := time.Date(2021, 3, 14, 10, 0, 0, 0, time.UTC)
	mockNow(t, now)

	code, err := svc.Issue(ctx, testShare)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}
	if len(code.Code) != codeLen {
		t.Errorf("Issue() code = %q; want %d chars", code.Code, codeLen)
	}
	if code.Payload != testShare.payload() {
		t.Errorf("Issue() payload = %+v; want %+v", code.Payload, testShare.payload())
	}
	if !code.CreatedAt.Equal(now) {
		t.Errorf("Issue() CreatedAt = %v; want %v", code.CreatedAt, now)
	}
	if want := now.Add(arTTL); !code.ExpiresAt.Equal(want) {
		t.Errorf("Issue() ExpiresAt = %v; want %v", code.ExpiresAt, want)
	}

	// durable write is async
	waitFor(t, func() bool { return repo.has(code.Code) })

	got, err := svc.Resolve(ctx, code.Code)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if got.Code != code.Code || got.Payload != code.Payload {
		t.Errorf("Resolve() = %+v; want %+v", got, code)
	}

	// input is cleaned and upcased
	if _, err = svc.Resolve(ctx, "  "+strings.ToLower(code.Code)+" "); err != nil {
		t.Errorf("Resolve() with messy input failed: %v", err)
	}

	if _, err = svc.Resolve(ctx, "NOPE42"); err != ErrNotFound {
		t.Errorf("Resolve() unknown code error = %v; want ErrNotFound", err)
	}
}

func Test_Service_Issue_collision(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	taken, err := svc.Issue(ctx, testShare)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	draws := []string{taken.Code, taken.Code, "FRESH1"}
	var i int
	generateCodeFunc = func() (string, error) {
		c := draws[i%len(draws)]
		i++
		return c, nil
	}
	t.Cleanup(func() { generateCodeFunc = generateCode })

	code, err := svc.Issue(ctx, testShare)
	if err != nil {
		t.Fatalf("Issue() failed after collisions: %v", err)
	}
	if code.Code != "FRESH1" {
		t.Errorf("Issue() code = %q; want FRESH1 after 2 collisions", code.Code)
	}

	// exhausting all draws fails
	i = 0
	draws = []string{taken.Code, taken.Code, taken.Code}
	if _, err = svc.Issue(ctx, testShare); err == nil {
		t.Error("Issue() succeeded; want error when all draws collide")
	}
}

func Test_Service_Issue_durableFailure(t *testing.T) {
	svc, repo := newTestService()
	repo.failWith(context.DeadlineExceeded)

	code, err := svc.Issue(context.Background(), testShare)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	// the in-process tier still serves the code
	got, err := svc.Resolve(context.Background(), code.Code)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if got.Code != code.Code {
		t.Errorf("Resolve() = %q; want %q", got.Code, code.Code)
	}
}

func Test_Service_Resolve_expired(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	now := time.Date(2021, 3, 14, 10, 0, 0, 0, time.UTC)
	mockNow(t, now)

	code, err := svc.Issue(ctx, testShare)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}
	waitFor(t, func() bool { return repo.has(code.Code) })

	// valid until the last instant before expiry
	mockNow(t, now.Add(arTTL-time.Second))
	if _, err = svc.Resolve(ctx, code.Code); err != nil {
		t.Fatalf("Resolve() before expiry failed: %v", err)
	}

	// exactly at expiry the code is gone
	mockNow(t, now.Add(arTTL))
	if _, err = svc.Resolve(ctx, code.Code); err != ErrNotFound {
		t.Errorf("Resolve() at expiry error = %v; want ErrNotFound", err)
	}

	// both tiers end up purged
	waitFor(t, func() bool { return !repo.has(code.Code) })
	if _, ok := svc.get(code.Code); ok {
		t.Error("expired code still in the in-process tier")
	}
}

func Test_Service_Resolve_promotesFromDurable(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	now := time.Now().UTC()
	code := Code{
		Code:      "ABC123",
		Payload:   testShare.payload(),
		CreatedAt: now,
		ExpiresAt: now.Add(arTTL),
	}
	if err := repo.SaveCode(ctx, code); err != nil {
		t.Fatalf("SaveCode() failed: %v", err)
	}

	got, err := svc.Resolve(ctx, code.Code)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if got.Code != code.Code {
		t.Errorf("Resolve() = %q; want %q", got.Code, code.Code)
	}

	// promoted: resolvable even once the durable tier goes away
	repo.failWith(context.DeadlineExceeded)
	if _, err = svc.Resolve(ctx, code.Code); err != nil {
		t.Errorf("Resolve() after promotion failed: %v", err)
	}
}

func Test_Service_Resolve_expiredDurable(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	now := time.Now().UTC()
	code := Code{
		Code:      "OLD001",
		Payload:   testShare.payload(),
		CreatedAt: now.Add(-2 * arTTL),
		ExpiresAt: now.Add(-arTTL),
	}
	if err := repo.SaveCode(ctx, code); err != nil {
		t.Fatalf("SaveCode() failed: %v", err)
	}

	if _, err := svc.Resolve(ctx, code.Code); err != ErrNotFound {
		t.Errorf("Resolve() expired durable code error = %v; want ErrNotFound", err)
	}
	waitFor(t, func() bool { return !repo.has(code.Code) })
}

func Test_Service_Sweep(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	now := time.Date(2021, 3, 14, 10, 0, 0, 0, time.UTC)
	mockNow(t, now)

	expired, err := svc.Issue(ctx, NewShare{AssetURL: "https://cdn.test.cd/a.glb", Title: "A", Kind: KindGeneric})
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}
	fresh, err := svc.Issue(ctx, NewShare{AssetURL: "https://cdn.test.cd/b.glb", Title: "B", Kind: KindAR})
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}
	waitFor(t, func() bool { return repo.has(expired.Code) && repo.has(fresh.Code) })

	// between the generic and AR TTLs only the generic code has expired
	mockNow(t, now.Add(genericTTL+time.Minute))
	svc.Sweep(ctx)

	if _, ok := svc.get(expired.Code); ok {
		t.Error("Sweep() left an expired code in the in-process tier")
	}
	if repo.has(expired.Code) {
		t.Error("Sweep() left an expired code in the durable tier")
	}
	if _, ok := svc.get(fresh.Code); !ok {
		t.Error("Sweep() removed a live code from the in-process tier")
	}
	if !repo.has(fresh.Code) {
		t.Error("Sweep() removed a live code from the durable tier")
	}

	// idempotent
	svc.Sweep(ctx)
	if !repo.has(fresh.Code) {
		t.Error("second Sweep() removed a live code")
	}
}
