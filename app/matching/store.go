package matching

import (
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// ColumnKind tells StoreScope how a column is projected
type ColumnKind int

const (
	TextColumn ColumnKind = iota
	NumberColumn
	CountColumn
	DateColumn
	EnumColumn
)

// Column describes one searchable column for the store prefilter
type Column struct {
	Name string
	Kind ColumnKind
	// Unit is the phrase word of a CountColumn ("bed")
	Unit string
	// Values maps each stored enum value to its search fragments
	Values map[string][]string
}

func TextCol(name string) Column { return Column{Name: name, Kind: TextColumn} }

func NumberCol(name string) Column { return Column{Name: name, Kind: NumberColumn} }

func CountCol(name, unit string) Column { return Column{Name: name, Kind: CountColumn, Unit: unit} }

func DateCol(name string) Column { return Column{Name: name, Kind: DateColumn} }

func EnumCol(name string, values map[string][]string) Column {
	return Column{Name: name, Kind: EnumColumn, Values: values}
}

// StoreScope narrows a query to rows that may match tokens. It returns a
// superset of the in-memory Matcher: callers still run Filter over the
// fetched rows.
func StoreScope(tokens []string, columns []Column) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		castType := "TEXT"
		if db.Dialector != nil && db.Dialector.Name() == "mysql" {
			castType = "CHAR"
		}

		for _, tok := range tokens {
			// LOWER is ASCII-only on some dialects; leave these to Filter
			if !isASCII(tok) {
				continue
			}
			clause, args := tokenClause(tok, columns, castType)
			if clause == "" {
				db = db.Where("1 = 0")
				continue
			}
			db = db.Where(clause, args...)
		}
		return db
	}
}

func tokenClause(tok string, columns []Column, castType string) (string, []any) {
	var (
		ors  []string
		args []any
	)
	like := "%" + tok + "%"
	digits := stripNonDigits(tok)

	for _, col := range columns {
		switch col.Kind {
		case TextColumn:
			ors = append(ors, "LOWER("+col.Name+") LIKE ?")
			args = append(args, like)

		case EnumColumn:
			if values := enumValuesContaining(col.Values, tok); len(values) > 0 {
				ors = append(ors, col.Name+" IN ?")
				args = append(args, values)
			}

		case NumberColumn, CountColumn:
			ors = append(ors, "CAST("+col.Name+" AS "+castType+") LIKE ?")
			args = append(args, like)
			if digits != "" {
				if n, err := strconv.ParseFloat(digits, 64); err == nil {
					ors = append(ors, col.Name+" = ?")
					args = append(args, n)
				}
			}
			if col.Kind == CountColumn && strings.Contains(col.Unit+"s", tok) {
				ors = append(ors, col.Name+" IS NOT NULL")
			}

		case DateColumn:
			if isDay(tok) {
				ors = append(ors, col.Name+" BETWEEN ? AND ?")
				args = append(args, tok, tok+" 23:59:59")
			} else if isDatePart(tok) {
				ors = append(ors, col.Name+" IS NOT NULL")
			}
		}
	}

	if len(ors) == 0 {
		return "", nil
	}
	return "(" + strings.Join(ors, " OR ") + ")", args
}

func enumValuesContaining(values map[string][]string, tok string) []string {
	var out []string
	for value, fragments := range values {
		for _, f := range fragments {
			if strings.Contains(strings.ToLower(f), tok) {
				out = append(out, value)
				break
			}
		}
	}
	return out
}

func stripNonDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// isDay matches a full YYYY-MM-DD token
func isDay(tok string) bool {
	if len(tok) != 10 || tok[4] != '-' || tok[7] != '-' {
		return false
	}
	return stripNonDigits(tok) == tok[:4]+tok[5:7]+tok[8:]
}

// isDatePart reports whether tok could be a piece of a YYYY-MM-DD string
func isDatePart(tok string) bool {
	for _, r := range tok {
		if (r < '0' || r > '9') && r != '-' {
			return false
		}
	}
	return tok != ""
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
