package main

import (
	"bytes"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/serenize/snaker"

	"github.com/titpetric/persist/migrate"
)

// historyColumns lists the json field names of migrate.MigrationData
func historyColumns() []string {
	t := reflect.TypeOf(migrate.MigrationData{})
	result := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name := strings.Split(t.Field(i).Tag.Get("json"), ",")[0]
		if name != "" && name != "-" {
			result = append(result, name)
		}
	}
	return result
}

func historyRow(row migrate.MigrationModel) map[string]string {
	data := row.Data
	installed := ""
	if data.InstalledOnEpochMs > 0 {
		installed = time.UnixMilli(int64(data.InstalledOnEpochMs)).UTC().Format(time.RFC3339)
	}
	return map[string]string{
		"id":                    strconv.FormatInt(row.ID, 10),
		"version":               strconv.Itoa(int(row.Version)),
		"migration_id":          data.MigrationID,
		"migration_type":        string(data.MigrationType),
		"md5_checksum":          data.MD5Checksum,
		"installed_on_epoch_ms": installed,
		"execution_time_ms":     strconv.FormatUint(data.ExecutionTimeMs, 10),
		"success":               strconv.FormatBool(data.Success),
	}
}

func renderHistoryTable(table string, history []migrate.MigrationModel) []byte {
	columns := append([]string{"id", "version"}, historyColumns()...)

	rows := make([]map[string]string, len(history))
	for k, row := range history {
		rows[k] = historyRow(row)
	}

	// calculate initial padding from table header
	titles := make([]interface{}, len(columns))
	padding := make([]interface{}, len(columns))
	for k, column := range columns {
		title := snaker.SnakeToCamel(column)
		titles[k] = title
		padding[k] = len(title)
	}

	max := func(a, b int) int {
		if a > b {
			return a
		}
		return b
	}

	// calculate max length for columns for padding
	for _, row := range rows {
		for k, column := range columns {
			padding[k] = max(padding[k].(int), len(row[column]))
		}
	}

	// %%-%ds becomes %-10s, which right pads string to len=10
	format := strings.Repeat("| %%-%ds ", len(columns)) + "|\n"
	format = fmt.Sprintf(format, padding...)

	buf := bytes.NewBufferString(fmt.Sprintf("# %s\n\n", table))

	// write header row strings to the buffer
	buf.WriteString(fmt.Sprintf(format, titles...))

	// table header/body delimiter
	empty := make([]interface{}, len(columns))
	for k := range empty {
		empty[k] = ""
	}
	buf.WriteString(strings.Replace(fmt.Sprintf(format, empty...), " ", "-", -1))

	// table body
	for _, row := range rows {
		values := make([]interface{}, len(columns))
		for k, column := range columns {
			values[k] = row[column]
		}
		buf.WriteString(fmt.Sprintf(format, values...))
	}

	return buf.Bytes()
}
