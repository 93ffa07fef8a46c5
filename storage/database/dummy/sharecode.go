package dummydb

import (
	"context"
	"sync"
	"time"

	"github.com/trezcool/masomo-ar/core/sharecode"
)

type (
	DB struct {
		codes *codeTable
	}

	codeTable struct {
		sync.RWMutex
		table map[string]sharecode.Code
	}
)

func Open() (*DB, error) {
	db := &DB{
		codes: &codeTable{table: make(map[string]sharecode.Code)},
	}
	return db, nil
}

// CodeRepository is a durable-tier stand-in for tests; Errs lets tests
// inject storage failures.
type CodeRepository struct {
	db *codeTable

	// Errs, if set, is returned by every operation.
	Errs error
}

var _ sharecode.Repository = (*CodeRepository)(nil)

func NewCodeRepository(db *DB) *CodeRepository {
	return &CodeRepository{db: db.codes}
}

func (repo *CodeRepository) FailWith(err error) { repo.Errs = err }

func (repo *CodeRepository) SaveCode(ctx context.Context, code sharecode.Code) error {
	if repo.Errs != nil {
		return repo.Errs
	}
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.table[code.Code] = code
	return nil
}

func (repo *CodeRepository) GetCode(ctx context.Context, code string) (sharecode.Code, error) {
	if repo.Errs != nil {
		return sharecode.Code{}, repo.Errs
	}
	repo.db.RLock()
	defer repo.db.RUnlock()
	if c, ok := repo.db.table[code]; ok {
		return c, nil
	}
	return sharecode.Code{}, sharecode.ErrNotFound
}

func (repo *CodeRepository) DeleteCode(ctx context.Context, code string) error {
	if repo.Errs != nil {
		return repo.Errs
	}
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, code)
	return nil
}

func (repo *CodeRepository) DeleteExpiredCodes(ctx context.Context, now time.Time) (int64, error) {
	if repo.Errs != nil {
		return 0, repo.Errs
	}
	repo.db.Lock()
	defer repo.db.Unlock()
	var n int64
	for c, code := range repo.db.table {
		if code.Expired(now) {
			delete(repo.db.table, c)
			n++
		}
	}
	return n, nil
}

// Len reports the number of stored codes; test helper.
func (repo *CodeRepository) Len() int {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.table)
}
