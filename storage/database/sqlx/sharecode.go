package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/friendsofgo/errors"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/masomo-ar/core/sharecode"
)

type codeRow struct {
	Code           string    `db:"code"`
	Kind           string    `db:"kind"`
	AssetURL       string    `db:"asset_url"`
	Title          string    `db:"title"`
	SecondaryTitle string    `db:"secondary_title"`
	CreatedAt      time.Time `db:"created_at"`
	ExpiresAt      time.Time `db:"expires_at"`
}

func (r codeRow) toCode() sharecode.Code {
	return sharecode.Code{
		Code: r.Code,
		Payload: sharecode.Payload{
			AssetURL:       r.AssetURL,
			Title:          r.Title,
			SecondaryTitle: r.SecondaryTitle,
			Kind:           sharecode.Kind(r.Kind),
		},
		CreatedAt: r.CreatedAt,
		ExpiresAt: r.ExpiresAt,
	}
}

type codeRepository struct {
	db *sqlx.DB
}

var _ sharecode.Repository = (*codeRepository)(nil)

func NewCodeRepository(db *sql.DB, driverName string) sharecode.Repository {
	return &codeRepository{db: sqlx.NewDb(db, driverName)}
}

func (repo *codeRepository) SaveCode(ctx context.Context, code sharecode.Code) error {
	query := repo.db.Rebind(`
INSERT INTO share_code (code, kind, asset_url, title, secondary_title, created_at, expires_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := repo.db.ExecContext(
		ctx, query,
		code.Code, string(code.Payload.Kind), code.Payload.AssetURL,
		code.Payload.Title, code.Payload.SecondaryTitle, code.CreatedAt, code.ExpiresAt,
	)
	return errors.Wrap(err, "inserting share code")
}

func (repo *codeRepository) GetCode(ctx context.Context, code string) (sharecode.Code, error) {
	var row codeRow
	query := repo.db.Rebind(`
SELECT code, kind, asset_url, title, secondary_title, created_at, expires_at
FROM share_code WHERE code = ?`)
	if err := repo.db.GetContext(ctx, &row, query, code); err != nil {
		if err == sql.ErrNoRows {
			return sharecode.Code{}, sharecode.ErrNotFound
		}
		return sharecode.Code{}, errors.Wrap(err, "selecting share code")
	}
	return row.toCode(), nil
}

func (repo *codeRepository) DeleteCode(ctx context.Context, code string) error {
	query := repo.db.Rebind(`DELETE FROM share_code WHERE code = ?`)
	_, err := repo.db.ExecContext(ctx, query, code)
	return errors.Wrap(err, "deleting share code")
}

func (repo *codeRepository) DeleteExpiredCodes(ctx context.Context, now time.Time) (int64, error) {
	query := repo.db.Rebind(`DELETE FROM share_code WHERE expires_at <= ?`)
	res, err := repo.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, errors.Wrap(err, "deleting expired share codes")
	}
	n, err := res.RowsAffected()
	return n, errors.Wrap(err, "counting deleted share codes")
}
