package query

import (
	"fmt"
	"sort"
	"strings"
)

// QueryType represents the type of SQL query
type QueryType string

const (
	QueryTypeSelect QueryType = "SELECT"
	QueryTypeInsert QueryType = "INSERT"
	QueryTypeUpdate QueryType = "UPDATE"
	QueryTypeDelete QueryType = "DELETE"
)

// Sort directions
const (
	ASC  = "ASC"
	DESC = "DESC"
)

// QueryResult represents the built SQL query and parameters
type QueryResult struct {
	SQL    string
	Params []interface{}
}

// Builder is a fluent SQL query builder.
// Column lists for INSERT and UPDATE are emitted in sorted order so the
// generated SQL is stable.
type Builder struct {
	queryType    QueryType
	table        string
	fields       []string
	joins        []string
	whereClauses []string
	params       []interface{}
	orderBy      []string
	limit        *int
	values       map[string]interface{}
}

// From creates a new SELECT query builder
func From(table string) *Builder {
	return &Builder{queryType: QueryTypeSelect, table: table}
}

// Insert creates a new INSERT query builder
func Insert(table string, data map[string]interface{}) *Builder {
	return &Builder{queryType: QueryTypeInsert, table: table, values: data}
}

// Update creates a new UPDATE query builder
func Update(table string) *Builder {
	return &Builder{queryType: QueryTypeUpdate, table: table, values: make(map[string]interface{})}
}

// Delete creates a new DELETE query builder
func Delete(table string) *Builder {
	return &Builder{queryType: QueryTypeDelete, table: table}
}

// Select specifies which columns to select. Bare names are quoted and
// prefixed with the table; expressions containing a dot or a paren pass through.
func (b *Builder) Select(fields ...string) *Builder {
	if b.queryType != QueryTypeSelect {
		return b
	}
	for _, field := range fields {
		b.fields = append(b.fields, b.column(field))
	}
	return b
}

// Join adds a JOIN clause
func (b *Builder) Join(joinType, table, alias, on string) *Builder {
	if b.queryType != QueryTypeSelect {
		return b
	}
	b.joins = append(b.joins, fmt.Sprintf("%s JOIN `%s` AS `%s` ON %s", joinType, table, alias, on))
	return b
}

// Where adds a WHERE condition
func (b *Builder) Where(condition string, value ...interface{}) *Builder {
	b.whereClauses = append(b.whereClauses, condition)
	b.params = append(b.params, value...)
	return b
}

// WhereEq adds `column` = ? for a bare column of the builder's table
func (b *Builder) WhereEq(column string, value interface{}) *Builder {
	return b.Where(b.column(column)+" = ?", value)
}

// WhereIn adds `column` IN (...). An empty list matches nothing.
func (b *Builder) WhereIn(column string, values []string) *Builder {
	if len(values) == 0 {
		return b.Where("1 = 0")
	}
	placeholders := make([]string, len(values))
	params := make([]interface{}, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		params[i] = v
	}
	return b.Where(fmt.Sprintf("%s IN (%s)", b.column(column), strings.Join(placeholders, ", ")), params...)
}

// Set sets values for UPDATE query
func (b *Builder) Set(data map[string]interface{}) *Builder {
	if b.queryType != QueryTypeUpdate {
		return b
	}
	for k, v := range data {
		b.values[k] = v
	}
	return b
}

// OrderBy appends an ORDER BY term
func (b *Builder) OrderBy(field string, direction string) *Builder {
	if b.queryType != QueryTypeSelect {
		return b
	}
	b.orderBy = append(b.orderBy, fmt.Sprintf("%s %s", b.column(field), direction))
	return b
}

// Limit adds LIMIT clause
func (b *Builder) Limit(n int) *Builder {
	if b.queryType != QueryTypeSelect {
		return b
	}
	b.limit = &n
	return b
}

// Build constructs the final SQL query
func (b *Builder) Build() QueryResult {
	switch b.queryType {
	case QueryTypeInsert:
		sql, params := b.buildInsert()
		return QueryResult{SQL: sql, Params: params}
	case QueryTypeUpdate:
		sql, params := b.buildUpdate()
		return QueryResult{SQL: sql, Params: params}
	case QueryTypeDelete:
		return QueryResult{SQL: b.buildDelete(), Params: b.params}
	default:
		return QueryResult{SQL: b.buildSelect(), Params: b.params}
	}
}

func (b *Builder) column(field string) string {
	if field == "*" || strings.ContainsAny(field, ".(`") {
		return field
	}
	return fmt.Sprintf("`%s`.`%s`", b.table, field)
}

func (b *Builder) buildSelect() string {
	parts := make([]string, 0, 6)

	fields := "*"
	if len(b.fields) > 0 {
		fields = strings.Join(b.fields, ", ")
	}
	parts = append(parts, fmt.Sprintf("SELECT %s FROM `%s`", fields, b.table))

	if len(b.joins) > 0 {
		parts = append(parts, strings.Join(b.joins, " "))
	}
	if len(b.whereClauses) > 0 {
		parts = append(parts, "WHERE "+strings.Join(b.whereClauses, " AND "))
	}
	if len(b.orderBy) > 0 {
		parts = append(parts, "ORDER BY "+strings.Join(b.orderBy, ", "))
	}
	if b.limit != nil {
		parts = append(parts, fmt.Sprintf("LIMIT %d", *b.limit))
	}

	return strings.Join(parts, " ")
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (b *Builder) buildInsert() (string, []interface{}) {
	keys := sortedKeys(b.values)
	cols := make([]string, len(keys))
	placeholders := make([]string, len(keys))
	params := make([]interface{}, len(keys))

	for i, key := range keys {
		cols[i] = fmt.Sprintf("`%s`", key)
		placeholders[i] = "?"
		params[i] = b.values[key]
	}

	sql := fmt.Sprintf("INSERT INTO `%s` (%s) VALUES (%s)",
		b.table,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "))

	return sql, params
}

func (b *Builder) buildUpdate() (string, []interface{}) {
	keys := sortedKeys(b.values)
	setClauses := make([]string, len(keys))
	params := make([]interface{}, 0, len(keys)+len(b.params))

	for i, key := range keys {
		setClauses[i] = fmt.Sprintf("`%s` = ?", key)
		params = append(params, b.values[key])
	}

	sql := fmt.Sprintf("UPDATE `%s` SET %s", b.table, strings.Join(setClauses, ", "))
	if len(b.whereClauses) > 0 {
		sql += " WHERE " + strings.Join(b.whereClauses, " AND ")
		params = append(params, b.params...)
	}

	return sql, params
}

func (b *Builder) buildDelete() string {
	sql := fmt.Sprintf("DELETE FROM `%s`", b.table)
	if len(b.whereClauses) > 0 {
		sql += " WHERE " + strings.Join(b.whereClauses, " AND ")
	}
	return sql
}
