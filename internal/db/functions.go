package db

import (
	"database/sql/driver"
	"strings"

	"modernc.org/sqlite"
)

// FoldFunc is a SQL function that lower-cases text with Unicode case
// mapping. The built-in lower() only folds ASCII.
const FoldFunc = "casefold"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(FoldFunc, 1, casefold)
}

func casefold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}
