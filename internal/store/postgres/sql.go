package postgres

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jonathan/job-tracker/internal/store"
)

// columns lists the tables the store may touch and their columns.
var columns = map[string][]string{
	store.TableApplications: {"id", "user_id", "company", "position", "status", "date_applied", "location", "notes", "created_at"},
	store.TableUsers:        {"id", "name", "email", "password_hash", "password_set", "created_at", "updated_at"},
	store.TableProfiles:     {"id", "email", "full_name", "university", "graduation_year", "major", "phone", "created_at", "updated_at"},
}

func checkColumns(table string, names ...string) error {
	allowed, ok := columns[table]
	if !ok {
		return fmt.Errorf("unknown table %q", table)
	}
	for _, name := range names {
		found := false
		for _, col := range allowed {
			if col == name {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown column %q on table %q", name, table)
		}
	}
	return nil
}

func ident(parts ...string) string {
	return pgx.Identifier(parts).Sanitize()
}

// whereClause renders filter against alias t, numbering parameters from start.
func whereClause(table string, filter store.Filter, start int) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}

	conds := make([]string, 0, len(filter))
	args := make([]any, 0, len(filter))
	for i, c := range filter {
		if err := checkColumns(table, c.Column); err != nil {
			return "", nil, err
		}
		conds = append(conds, fmt.Sprintf("%s::text = $%d", ident("t", c.Column), start+i))
		args = append(args, c.Value)
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func buildSelect(table string, filter store.Filter, order store.Order) (string, []any, error) {
	if err := checkColumns(table); err != nil {
		return "", nil, err
	}

	where, args, err := whereClause(table, filter, 1)
	if err != nil {
		return "", nil, err
	}

	sql := fmt.Sprintf("SELECT to_jsonb(t.*) FROM %s AS t%s", ident(table), where)
	if order.Column != "" {
		if err := checkColumns(table, order.Column); err != nil {
			return "", nil, err
		}
		dir := "ASC"
		if order.Descending {
			dir = "DESC"
		}
		sql += fmt.Sprintf(" ORDER BY %s %s", ident("t", order.Column), dir)
	}
	return sql, args, nil
}

// buildInsert copies the given columns out of the JSON document in $1, letting
// Postgres apply defaults for every other column.
func buildInsert(table string, cols []string) (string, error) {
	if err := checkColumns(table, cols...); err != nil {
		return "", err
	}

	if len(cols) == 0 {
		return fmt.Sprintf("INSERT INTO %s AS t DEFAULT VALUES RETURNING to_jsonb(t.*)", ident(table)), nil
	}

	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = ident(c)
	}
	list := strings.Join(quoted, ", ")

	return fmt.Sprintf(
		"INSERT INTO %s AS t (%s) SELECT %s FROM jsonb_populate_record(NULL::%s, $1::jsonb) RETURNING to_jsonb(t.*)",
		ident(table), list, list, ident(table),
	), nil
}

func buildUpdate(table string, cols []string, filter store.Filter) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, fmt.Errorf("filter required")
	}

	set := make([]string, 0, len(cols))
	for _, c := range cols {
		if c == "id" {
			continue
		}
		set = append(set, fmt.Sprintf("%s = r.%s", ident(c), ident(c)))
	}
	if len(set) == 0 {
		return "", nil, fmt.Errorf("nothing to update")
	}

	where, args, err := whereClause(table, filter, 2)
	if err != nil {
		return "", nil, err
	}

	return fmt.Sprintf(
		"UPDATE %s AS t SET %s FROM jsonb_populate_record(NULL::%s, $1::jsonb) AS r%s RETURNING to_jsonb(t.*)",
		ident(table), strings.Join(set, ", "), ident(table), where,
	), args, nil
}

func buildDelete(table string, filter store.Filter) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, fmt.Errorf("filter required")
	}
	if err := checkColumns(table); err != nil {
		return "", nil, err
	}

	where, args, err := whereClause(table, filter, 1)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("DELETE FROM %s AS t%s", ident(table), where), args, nil
}
