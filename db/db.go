package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"petcoin/log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Store is the mysql transaction journal.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	dsn    string
	open   func(ctx context.Context) (*sql.DB, error)
	locker uint32
}

// Open connects to the mysql database of dsn.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, dsn: dsn}
	s.open = s.openMySQL
	return s, nil
}

// NewStore wraps an opened database, reconnection is disabled.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the database.
func (s *Store) Close() error {
	return s.conn().Close()
}

func (s *Store) conn() *sql.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}

func (s *Store) openMySQL(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("mysql", s.dsn)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// swap replaces the pool and closes the old one.
func (s *Store) swap(db *sql.DB) {
	s.mu.Lock()
	old := s.db
	s.db = db
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
}

func (s *Store) reconnect(ctx context.Context) {
	if s.dsn == "" || s.open == nil {
		return
	}

	if !atomic.CompareAndSwapUint32(&s.locker, 0, 1) {
		for {
			// Lock was held by others, wait till lock released.
			time.Sleep(20 * time.Millisecond)
			// Lock was released.
			if atomic.LoadUint32(&s.locker) != 1 {
				return
			}
		}
	}

	defer atomic.StoreUint32(&s.locker, 0)

	for {
		log.Printf("Try Reconnecting to database...")
		db, err := s.open(ctx)
		if err == nil {
			s.swap(db)
			return
		}

		log.Printf("Wait for few seconds to reconnect again")
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

func (s *Store) wrappedQuery(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	for {
		rows, err := s.conn().QueryContext(ctx, query, args...)
		if err == nil {
			return rows, nil
		}

		if !connErr(err) || s.dsn == "" || ctx.Err() != nil {
			return nil, err
		}

		s.reconnect(ctx)
	}
}

func (s *Store) wrappedExec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	for {
		result, err := s.conn().ExecContext(ctx, query, args...)
		if err == nil {
			return result, nil
		}

		if !connErr(err) || s.dsn == "" || ctx.Err() != nil {
			return nil, err
		}

		s.reconnect(ctx)
	}
}

func (s *Store) transact(ctx context.Context, txFunc func(*sql.Tx) error) (err error) {
	tx, err := s.conn().BeginTx(ctx, nil)
	if err != nil {
		if !connErr(err) || s.dsn == "" || ctx.Err() != nil {
			return err
		}

		s.reconnect(ctx)
		return s.transact(ctx, txFunc)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	return txFunc(tx)
}

func connErr(err error) bool {
	if err == nil {
		return false
	}

	log.Println(err)

	if errors.Is(err, mysql.ErrInvalidConn) ||
		errors.Is(err, driver.ErrBadConn) ||
		strings.HasSuffix(err.Error(), "operation timed out") ||
		strings.HasSuffix(err.Error(), "Server shutdown in progress") ||
		strings.HasPrefix(err.Error(), "Error 1290") {
		return true
	}

	return false
}
