package repository

import (
	"fmt"
	"strings"
)

type sqlBuilder struct {
	args []any
}

func newSQLBuilder() *sqlBuilder {
	return &sqlBuilder{args: make([]any, 0)}
}

func (b *sqlBuilder) addArg(value any) int {
	b.args = append(b.args, value)
	return len(b.args)
}

func (b *sqlBuilder) placeholder(idx int) string {
	return fmt.Sprintf("$%d", idx)
}

// bind adds value and returns its placeholder.
func (b *sqlBuilder) bind(value any) string {
	return b.placeholder(b.addArg(value))
}

// likePattern wraps value for a substring ILIKE match, escaping the LIKE
// metacharacters it contains.
func likePattern(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(value) + "%"
}
