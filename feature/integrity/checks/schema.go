package checks

import (
	"fmt"
	"reflect"
	"strings"

	"objectfs/core/database"
	"objectfs/core/storage/sqlblob"

	"gorm.io/gorm"
)

// SchemaReport strictly types the result of a blob table check.
type SchemaReport struct {
	Dialect string                 `json:"dialect"`
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Status         string   `json:"status"` // "ok", "error"
}

// expectedTypes lists the column type each dialect must report, keyed by
// column name. Types are matched as substrings of the lowercased type.
var expectedTypes = map[string]map[string]string{
	"sqlite": {
		"id":         "integer",
		"object_key": "text",
		"size":       "integer",
		"modified":   "datetime",
		"data":       "blob",
	},
	"mysql": {
		"id":         "bigint",
		"object_key": "varbinary",
		"size":       "bigint",
		"modified":   "datetime",
		"data":       "longblob",
	},
}

// CheckSchema verifies the blob table against the sqlblob.Blob model.
func CheckSchema(db *gorm.DB) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	dialect := db.Dialector.Name()
	types, ok := expectedTypes[dialect]
	if !ok {
		return nil, fmt.Errorf("unknown dialect: %s", dialect)
	}

	report := &SchemaReport{
		Dialect: dialect,
		Tables:  make(map[string]TableReport),
		Matched: true,
		Errors:  []string{},
	}

	tblReport := TableReport{
		MissingColumns: []string{},
		TypeMismatches: []string{},
		Status:         "ok",
	}

	actualCols, err := database.GetTableColumns(db, sqlblob.TableName)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", sqlblob.TableName, err))
		report.Matched = false
		return report, nil
	}

	actualMap := make(map[string]database.ColumnInfo)
	for _, col := range actualCols {
		actualMap[col.Field] = col
	}

	model := reflect.TypeOf(sqlblob.Blob{})
	for i := 0; i < model.NumField(); i++ {
		colName := parseGormColumn(model.Field(i).Tag.Get("gorm"))
		if colName == "" {
			continue
		}

		actCol, exists := actualMap[colName]
		if !exists {
			tblReport.MissingColumns = append(tblReport.MissingColumns, colName)
			tblReport.Status = "error"
			report.Matched = false
			continue
		}

		if expType := types[colName]; expType != "" && !strings.Contains(actCol.Type, expType) {
			mismatch := fmt.Sprintf("%s: expected %s, got %s", colName, expType, actCol.Type)
			tblReport.TypeMismatches = append(tblReport.TypeMismatches, mismatch)
			tblReport.Status = "error"
			report.Matched = false
		}
	}

	report.Tables[sqlblob.TableName] = tblReport
	return report, nil
}

func parseGormColumn(tag string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, "column:") {
			return strings.TrimPrefix(p, "column:")
		}
	}
	return ""
}
