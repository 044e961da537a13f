package querybuilder

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// UpsertModel builds an INSERT for every db-tagged field of model and, on a
// conflict over conflictColumns, overwrites every other column.
func UpsertModel(table string, model any, conflictColumns ...string) (string, []any, error) {
	cols, vals, err := Columns(model)
	if err != nil {
		return "", nil, err
	}
	if len(conflictColumns) == 0 {
		return "", nil, fmt.Errorf("upsert into %s needs conflict columns", table)
	}

	updates := make([]string, 0, len(cols))
	for _, col := range cols {
		if slices.Contains(conflictColumns, col) || col == "created_at" {
			continue
		}
		updates = append(updates, col)
	}

	return InsertInto(table).
		Columns(cols...).
		Values(vals...).
		OnConflictUpdate(conflictColumns, updates...).
		ToSQL()
}

// Columns returns the db-tagged column names of model and their values in
// declaration order.
func Columns(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be struct")
	}

	typ := value.Type()
	cols := make([]string, 0, typ.NumField())
	vals := make([]any, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.PkgPath != "" {
			continue
		}
		col := strings.TrimSpace(strings.Split(field.Tag.Get("db"), ",")[0])
		if col == "" || col == "-" {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, value.Field(i).Interface())
	}

	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("model has no db columns")
	}
	return cols, vals, nil
}
