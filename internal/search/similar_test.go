package search

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type namedDialector struct {
	gorm.Dialector
	name string
}

func (d namedDialector) Name() string { return d.name }

func TestFor(t *testing.T) {
	require.IsType(t, Trigram{}, For(&gorm.DB{Config: &gorm.Config{Dialector: namedDialector{name: "postgres"}}}))
	require.IsType(t, Like{}, For(&gorm.DB{Config: &gorm.Config{Dialector: namedDialector{name: "mysql"}}}))
	require.IsType(t, Like{}, For(nil))
}

func TestLikeEscapesWildcards(t *testing.T) {
	expr := Like{}.Similar("users.email", `50%_Off\`)

	require.Equal(t, "LOWER(users.email) LIKE ?", expr.SQL)
	require.Equal(t, []interface{}{`%50\%\_off\\%`}, expr.Vars)
}

func TestTrigram(t *testing.T) {
	expr := Trigram{}.Similar("orders.user_email", "Ada")

	require.Equal(t, "orders.user_email % ?", expr.SQL)
	require.Equal(t, []interface{}{"Ada"}, expr.Vars)
}

func TestSimilarAny(t *testing.T) {
	expr := SimilarAny(Trigram{}, "x", "a.one", "a.two")

	require.Equal(t, "(a.one % ? OR a.two % ?)", expr.SQL)
	require.Equal(t, []interface{}{"x", "x"}, expr.Vars)
}
