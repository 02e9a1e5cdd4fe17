package generator

import (
	"strings"

	"github.com/koba/snapdiff/internal/diff"
)

// GenerateSQL generates migration SQL from a diff result
func GenerateSQL(result *diff.Result, dbType string) string {
	var sqlStatements []string

	ddlGen := NewDDLGenerator(dbType)
	for _, tableName := range result.TableNames() {
		sql := ddlGen.Generate(result.Tables[tableName])
		if sql != "" {
			sqlStatements = append(sqlStatements, sql)
		}
	}

	return strings.Join(sqlStatements, "\n\n")
}
