// Package search builds fuzzy text predicates for the active database.
//
// PostgreSQL uses the pg_trgm similarity operator. MySQL has no trigram
// support, so it falls back to a case-insensitive substring match.
package search

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Dialect decides how a column is compared against a search term.
type Dialect interface {
	Similar(column, value string) clause.Expr
}

// For picks the dialect matching the connection behind db.
func For(db *gorm.DB) Dialect {
	if db != nil && db.Dialector != nil && db.Dialector.Name() == "postgres" {
		return Trigram{}
	}
	return Like{}
}

// Trigram matches with `column % value`, honouring pg_trgm.similarity_threshold.
type Trigram struct{}

func (Trigram) Similar(column, value string) clause.Expr {
	return clause.Expr{SQL: column + " % ?", Vars: []interface{}{value}}
}

// Like matches when value occurs anywhere in column, ignoring case.
type Like struct{}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (Like) Similar(column, value string) clause.Expr {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(value)) + "%"
	return clause.Expr{SQL: "LOWER(" + column + ") LIKE ?", Vars: []interface{}{pattern}}
}

// Any joins exprs with OR inside one parenthesised group.
func Any(exprs ...clause.Expr) clause.Expr {
	parts := make([]string, 0, len(exprs))
	var vars []interface{}
	for _, e := range exprs {
		parts = append(parts, e.SQL)
		vars = append(vars, e.Vars...)
	}
	return clause.Expr{SQL: "(" + strings.Join(parts, " OR ") + ")", Vars: vars}
}

// SimilarAny matches value against each of columns, combined with OR.
func SimilarAny(d Dialect, value string, columns ...string) clause.Expr {
	exprs := make([]clause.Expr, 0, len(columns))
	for _, col := range columns {
		exprs = append(exprs, d.Similar(col, value))
	}
	return Any(exprs...)
}
