package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// dsn builds the connection string. loc=UTC makes the driver parse
// DATETIME values as UTC time.Time; time_zone pins the MySQL session to
// +00:00 so CURRENT_TIMESTAMP column defaults and explicit
// UTC_TIMESTAMP() writes come from the same clock no matter what zone
// the server runs in. Without the pin, a created_at default on a
// non-UTC server lands hours away from the watermark.
func dsn(user, pass, host, port, name string) string {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	return fmt.Sprintf(
		"%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC&time_zone=%%27%%2B00%%3A00%%27",
		auth, host, port, name)
}

// Open connects to MySQL and verifies the connection. All DATETIME
// values are read and written in UTC so that watermark comparisons and
// record timestamps never depend on the server timezone.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn(user, pass, host, port, name))
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// DuplicateKey reports whether err is a MySQL duplicate-entry error
// (code 1062). Repositories use it to translate natural-key collisions
// into their own sentinel errors.
func DuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return false
}
