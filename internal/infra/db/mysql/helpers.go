package mysql

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// nullIfEmpty maps "" to NULL for optional text columns
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func isDuplicate(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}
