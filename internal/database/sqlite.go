package database

import (
	"database/sql"
	"strings"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLiteDriverName is the go-sqlite3 driver registered with Unicode-aware
// LOWER and UPPER. The built-ins only fold ASCII.
const SQLiteDriverName = "sqlite3_unicode"

func init() {
	sql.Register(SQLiteDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			if err := conn.RegisterFunc("lower", strings.ToLower, true); err != nil {
				return err
			}
			return conn.RegisterFunc("upper", strings.ToUpper, true)
		},
	})
}

// SQLite returns a gorm dialector for dsn on the Unicode-aware driver.
func SQLite(dsn string) gorm.Dialector {
	return &sqlite.Dialector{DriverName: SQLiteDriverName, DSN: dsn}
}
