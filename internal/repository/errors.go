package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql" // MySQL error numbers
	"gorm.io/gorm"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY
const mysqlDuplicateEntry = 1062

// isDuplicateKey reports whether err is a unique constraint violation. gorm
// translates it when TranslateError is on; the driver checks cover
// connections opened without it.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") // SQLite
}
