package sharecode

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-ar/core"
)

const (
	sweepInterval = 5 * time.Minute

	// collision re-draws against the in-process tier before giving up
	maxCodeDraws = 3
)

var nowFunc = time.Now // mockable

type (
	// Repository is the durable side-store tier; it lets a second
	// device/tab resolve a code issued by another process.
	// GetCode returns ErrNotFound for unknown codes.
	Repository interface {
		SaveCode(ctx context.Context, code Code) error
		GetCode(ctx context.Context, code string) (Code, error)
		DeleteCode(ctx context.Context, code string) error
		DeleteExpiredCodes(ctx context.Context, now time.Time) (int64, error)
	}

	// Service issues and resolves short-lived share codes across two tiers:
	// an in-process map (authoritative for the issuing process) and the
	// durable Repository. Every tier mutation is a single self-contained
	// read-or-write so it can interleave safely with the periodic sweep.
	Service struct {
		mu   sync.RWMutex
		mem  map[string]Code
		repo Repository

		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{
		mem:    make(map[string]Code),
		repo:   repo,
		logger: logger,
	}
}

// Issue generates a fresh code bound to the share payload and stores it in
// both tiers. The durable write is fire-and-forget: a failure is logged and
// never surfaced to the caller.
func (svc *Service) Issue(ctx context.Context, ns NewShare) (Code, error) {
	now := nowFunc().UTC()
	code := Code{
		Payload:   ns.payload(),
		CreatedAt: now,
		ExpiresAt: now.Add(ns.Kind.TTL()),
	}

	var err error
	for i := 0; i < maxCodeDraws; i++ {
		if code.Code, err = generateCodeFunc(); err != nil {
			return Code{}, errors.Wrap(err, "generating code")
		}
		if svc.putIfAbsent(code) {
			break
		}
		code.Code = ""
	}
	if code.Code == "" {
		return Code{}, errors.New("could not generate an unused code")
	}

	go svc.saveDurable(code)
	return code, nil
}

// Resolve looks a code up, in-process tier first. An expired entry behaves
// exactly like a missing one and triggers best-effort deletion.
func (svc *Service) Resolve(ctx context.Context, c string) (Code, error) {
	c = strings.ToUpper(core.CleanString(c))
	now := nowFunc().UTC()

	if code, ok := svc.get(c); ok {
		if code.Expired(now) {
			svc.delete(c)
			go svc.deleteDurable(c)
			return Code{}, ErrNotFound
		}
		return code, nil
	}

	code, err := svc.repo.GetCode(ctx, c)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Code{}, ErrNotFound
		}
		return Code{}, errors.Wrap(err, "resolving code from durable store")
	}
	if code.Expired(now) {
		go svc.deleteDurable(c)
		return Code{}, ErrNotFound
	}

	// promote into the in-process tier
	svc.put(code)
	return code, nil
}

// ScheduleSweeps starts the periodic expiry sweep. It re-schedules itself
// for the lifetime of the owning process and is never awaited by callers.
func (svc *Service) ScheduleSweeps() {
	time.AfterFunc(sweepInterval, func() {
		svc.Sweep(context.Background())
		svc.ScheduleSweeps()
	})
}

// Sweep removes all expired entries from both tiers. Idempotent; durable
// failures are logged and never raised.
func (svc *Service) Sweep(ctx context.Context) {
	now := nowFunc().UTC()

	for _, c := range svc.expiredCodes(now) {
		svc.delete(c)
	}

	if _, err := svc.repo.DeleteExpiredCodes(ctx, now); err != nil {
		svc.logger.Warn(fmt.Sprintf("sweeping expired codes: %v", err), err)
	}
}

// in-process tier

func (svc *Service) get(c string) (Code, bool) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	code, ok := svc.mem[c]
	return code, ok
}

func (svc *Service) put(code Code) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.mem[code.Code] = code
}

func (svc *Service) putIfAbsent(code Code) bool {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if _, ok := svc.mem[code.Code]; ok {
		return false
	}
	svc.mem[code.Code] = code
	return true
}

func (svc *Service) delete(c string) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	delete(svc.mem, c)
}

func (svc *Service) expiredCodes(now time.Time) []string {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	expired := make([]string, 0)
	for c, code := range svc.mem {
		if code.Expired(now) {
			expired = append(expired, c)
		}
	}
	return expired
}

// durable tier; best-effort

func (svc *Service) saveDurable(code Code) {
	if err := svc.repo.SaveCode(context.Background(), code); err != nil {
		svc.logger.Warn(fmt.Sprintf("saving code %q to durable store: %v", code.Code, err), err)
	}
}

func (svc *Service) deleteDurable(c string) {
	if err := svc.repo.DeleteCode(context.Background(), c); err != nil {
		svc.logger.Warn(fmt.Sprintf("deleting code %q from durable store: %v", c, err), err)
	}
}
