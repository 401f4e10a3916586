package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/mattn/go-sqlite3"
)

// ErrNotFound indicates that no array is stored under the requested name.
var ErrNotFound = errors.New("array not found")

// SqliteStore handles database operations
type SqliteStore struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewSqliteStore creates a new array store backed by the Sqlite database at
// dbPath. Connections are opened on first use; the schema is created on the
// first write.
func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

// isEmptyStore reports whether err comes from reading a store that nothing
// was saved to yet: the database file or the arrays table does not exist.
func (s *SqliteStore) isEmptyStore(err error) bool {
	if _, sErr := os.Stat(s.dbPath); errors.Is(sErr, os.ErrNotExist) {
		return true
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrCantOpen ||
			(sqliteErr.Code == sqlite3.ErrError && strings.Contains(sqliteErr.Error(), "no such table"))
	}
	return false
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if err = runSQLCommand(db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func (s *SqliteStore) Save(ctx context.Context, name string, values []float64) (err error) {
	return s.SaveAll(ctx, map[string][]float64{name: values})
}

// SaveAll stores every array of the map in a single transaction. Either all
// arrays are saved or none is.
func (s *SqliteStore) SaveAll(ctx context.Context, arrays map[string][]float64) (err error) {
	if len(arrays) == 0 {
		return
	}

	names := make([]string, 0, len(arrays))
	for name := range arrays {
		names = append(names, name)
	}
	sort.Strings(names)

	normalized := make(map[string]string, len(arrays))
	owners := make(map[string]string, len(arrays))
	for _, name := range names {
		n, nErr := normalizeName(name)
		if nErr != nil {
			return nErr
		}
		if other, dup := owners[n]; dup {
			return fmt.Errorf("arrays '%s' and '%s' are both stored as '%s'", other, name, n)
		}
		owners[n] = name
		normalized[name] = n
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	stmt, err := tx.PrepareContext(ctx, upsertArraySQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	for _, name := range names {
		n := normalized[name]
		values := arrays[name]
		if _, err = stmt.ExecContext(ctx, n, len(values), encodeFloats(values)); err != nil {
			return fmt.Errorf("saving array '%s': %w", n, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *SqliteStore) Load(ctx context.Context, name string) (values []float64, err error) {
	n, err := normalizeName(name)
	if err != nil {
		return
	}

	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectArraySQL)
	if err != nil {
		if s.isEmptyStore(err) {
			err = fmt.Errorf("%w: '%s'", ErrNotFound, n)
			return
		}
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var length int
	var data []byte
	if err = stmt.QueryRowContext(ctx, n).Scan(&length, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = fmt.Errorf("%w: '%s'", ErrNotFound, n)
			return
		}
		err = fmt.Errorf("scanning array '%s': %w", n, err)
		return
	}

	if values, err = decodeFloats(data, length); err != nil {
		err = fmt.Errorf("decoding array '%s': %w", n, err)
	}
	return
}

func (s *SqliteStore) Arrays(ctx context.Context) (arrays []*ArrayInfo, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectArraysSQL)
	if err != nil {
		if s.isEmptyStore(err) {
			return nil, nil
		}
		err = fmt.Errorf("querying arrays: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var info ArrayInfo
		if err = rows.Scan(&info.Name, &info.Length, &info.CreatedAt, &info.UpdatedAt); err != nil {
			err = fmt.Errorf("scanning array: %w", err)
			return
		}
		arrays = append(arrays, &info)
	}
	err = rows.Err()
	return
}

func (s *SqliteStore) Names(ctx context.Context) ([]string, error) {
	arrays, err := s.Arrays(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(arrays))
	for i, a := range arrays {
		names[i] = a.Name
	}
	return names, nil
}

func (s *SqliteStore) Delete(ctx context.Context, name string) (err error) {
	n, err := normalizeName(name)
	if err != nil {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	result, err := db.ExecContext(ctx, deleteArraySQL, n)
	if err != nil {
		return fmt.Errorf("deleting array '%s': %w", n, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting array '%s': %w", n, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: '%s'", ErrNotFound, n)
	}
	return nil
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		s.closeErr = errors.Join(writeErr, readErr)
	})

	return s.closeErr
}
