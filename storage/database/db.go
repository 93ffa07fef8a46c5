package database

import (
	"database/sql"
	"net/url"
	"time"

	"github.com/friendsofgo/errors"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/trezcool/goose"

	"github.com/trezcool/masomo-ar/core"
	appfs "github.com/trezcool/masomo-ar/fs"
)

func open(dbName string, admin bool, conf *core.Config) (*sql.DB, error) {
	// sqlite opens (and creates) a local file; the default for single-node
	// deployments where the durable tier only needs to outlive one process.
	if conf.Database.Engine == "sqlite3" {
		return sql.Open("sqlite3", dbName)
	}

	user := url.UserPassword(conf.Database.User, conf.Database.Password)
	if admin && conf.Database.AdminUser != "" {
		user = url.UserPassword(conf.Database.AdminUser, conf.Database.AdminPassword)
	}

	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   conf.Database.Engine,
		User:     user,
		Host:     conf.Database.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return sql.Open(conf.Database.Engine, u.String())
}

func Open(conf *core.Config) (*sql.DB, error) {
	return open(conf.Database.Name, false, conf)
}

// Ping waits for the database to be ready. Waits 100ms longer between each attempt.
func Ping(db *sql.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// CreateIfNotExist provisions the application database. A no-op for sqlite
// where opening the file creates it.
func CreateIfNotExist(conf *core.Config) error {
	if conf.Database.Engine == "sqlite3" {
		return nil
	}

	db, err := open("postgres", true, conf)
	if err != nil {
		return errors.Wrap(err, "opening admin database")
	}
	defer func() { _ = db.Close() }()

	if err = Ping(db); err != nil {
		return err
	}

	var exists bool
	row := db.QueryRow("SELECT true FROM pg_database WHERE datname = $1", conf.Database.Name)
	if err = row.Scan(&exists); err != nil && err != sql.ErrNoRows {
		return errors.Wrap(err, "checking database existence")
	}
	if exists {
		return nil
	}
	if _, err = db.Exec(`CREATE DATABASE "` + conf.Database.Name + `"`); err != nil {
		return errors.Wrap(err, "creating database")
	}
	return nil
}

// Migrate applies all pending migrations from the embedded fs.
func Migrate(db *sql.DB, conf *core.Config) error {
	if err := goose.SetDialect(conf.Database.Engine); err != nil {
		return errors.Wrap(err, "setting goose dialect")
	}
	if err := goose.RunFS("up", db, appfs.FS, "migrations"); err != nil {
		return errors.Wrap(err, "applying migrations")
	}
	return nil
}
