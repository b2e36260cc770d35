package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/myrjola/surprise/internal/errors"
	"github.com/myrjola/surprise/internal/random"
)

// schemaObject is a row of sqlite_schema.
type schemaObject struct {
	Type    string `db:"type"`
	Name    string `db:"name"`
	TblName string `db:"tbl_name"`
	SQL     string `db:"sql"`
}

const schemaObjectsQuery = `SELECT type, name, tbl_name, sql
FROM sqlite_schema
WHERE name NOT LIKE 'sqlite_%' AND sql IS NOT NULL
ORDER BY CASE type WHEN 'table' THEN 0 ELSE 1 END, name`

// migrateTo synchronizes the database schema with schemaDefinition declaratively:
//
//  1. Indexes, triggers and views are dropped and recreated from the target schema.
//  2. Tables missing from the target are dropped and new tables are created.
//  3. Changed tables are rebuilt with the 12-step procedure https://www.sqlite.org/lang_altertable.html#otheralter
//     keeping the columns both versions share.
//
// Inspired by https://david.rothlis.net/declarative-schema-migration-for-sqlite/
func (db *Database) migrateTo(ctx context.Context, schemaDefinition string) error {
	target, err := targetSchema(ctx, schemaDefinition)
	if err != nil {
		return errors.Wrap(err, "build target schema")
	}

	// Foreign keys can't be toggled inside a transaction. The writer pool has a single connection so the pragma
	// applies to the transaction below.
	if _, err = db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return errors.Wrap(err, "disable foreign key validation")
	}
	defer func() {
		if _, fkErr := db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = ON"); fkErr != nil {
			fkErr = errors.Wrap(fkErr, "re-enable foreign key validation")
			db.logger.LogAttrs(ctx, slog.LevelError, "foreign keys left disabled", errors.SlogError(fkErr))
		}
	}()

	var tx *sqlx.Tx
	if tx, err = db.ReadWrite.BeginTxx(ctx, nil); err != nil {
		return errors.Wrap(err, "start transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var current []schemaObject
	if err = tx.SelectContext(ctx, &current, schemaObjectsQuery); err != nil {
		return errors.Wrap(err, "query current schema")
	}

	if err = db.dropDependents(ctx, tx, current); err != nil {
		return errors.Wrap(err, "drop dependents")
	}
	if err = db.migrateTables(ctx, tx, current, target); err != nil {
		return errors.Wrap(err, "migrate tables")
	}
	for _, object := range target.objects {
		if object.Type == "table" {
			continue
		}
		if _, err = tx.ExecContext(ctx, object.SQL); err != nil {
			return errors.Wrap(err, "create schema object",
				slog.String("type", object.Type), slog.String("name", object.Name))
		}
	}

	var violations []string
	if err = tx.SelectContext(ctx, &violations, "SELECT \"table\" FROM pragma_foreign_key_check"); err != nil {
		return errors.Wrap(err, "foreign key check")
	}
	if len(violations) > 0 {
		return errors.New("foreign key violations after migration", slog.Any("tables", violations))
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}

// schema is the parsed target schema together with the column names of each table.
type schema struct {
	objects []schemaObject
	columns map[string][]string
}

// targetSchema applies schemaDefinition to a throwaway in-memory database and reads back the resulting objects.
func targetSchema(ctx context.Context, schemaDefinition string) (schema, error) {
	name, err := random.Letters(20) //nolint:mnd // long enough to avoid collisions
	if err != nil {
		return schema{}, errors.Wrap(err, "generate database name")
	}
	var targetDB *sqlx.DB
	if targetDB, err = sqlx.Open("sqlite3", fmt.Sprintf("file:%s?mode=memory&cache=shared", name)); err != nil {
		return schema{}, errors.Wrap(err, "open schema target database")
	}
	defer func() {
		_ = targetDB.Close()
	}()
	// The in-memory database lives only as long as a connection to it.
	targetDB.SetMaxOpenConns(1)

	if strings.TrimSpace(schemaDefinition) != "" {
		if _, err = targetDB.ExecContext(ctx, schemaDefinition); err != nil {
			return schema{}, errors.Wrap(err, "apply schema definition")
		}
	}

	result := schema{columns: map[string][]string{}}
	if err = targetDB.SelectContext(ctx, &result.objects, schemaObjectsQuery); err != nil {
		return schema{}, errors.Wrap(err, "query target schema")
	}
	for _, object := range result.objects {
		if object.Type != "table" {
			continue
		}
		var columns []string
		if err = targetDB.SelectContext(ctx, &columns, "SELECT name FROM pragma_table_info(?)", object.Name); err != nil {
			return schema{}, errors.Wrap(err, "query target columns", slog.String("table", object.Name))
		}
		result.columns[object.Name] = columns
	}
	return result, nil
}

// dropDependents drops every index, trigger and view. They are recreated from the target schema afterwards.
func (db *Database) dropDependents(ctx context.Context, tx *sqlx.Tx, current []schemaObject) error {
	for _, object := range current {
		if object.Type == "table" {
			continue
		}
		stmt := fmt.Sprintf("DROP %s IF EXISTS %q", strings.ToUpper(object.Type), object.Name)
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "drop schema object", slog.String("query", stmt))
		}
	}
	return nil
}

func (db *Database) migrateTables(ctx context.Context, tx *sqlx.Tx, current []schemaObject, target schema) error {
	currentTables := map[string]schemaObject{}
	for _, object := range current {
		if object.Type == "table" {
			currentTables[object.Name] = object
		}
	}
	targetTables := map[string]schemaObject{}
	for _, object := range target.objects {
		if object.Type == "table" {
			targetTables[object.Name] = object
		}
	}

	for name := range currentTables {
		if _, ok := targetTables[name]; ok {
			continue
		}
		db.logger.LogAttrs(ctx, slog.LevelInfo, "dropping table", slog.String("table", name))
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %q", name)); err != nil {
			return errors.Wrap(err, "drop table", slog.String("table", name))
		}
	}

	for _, table := range target.objects {
		if table.Type != "table" {
			continue
		}
		existing, ok := currentTables[table.Name]
		switch {
		case !ok:
			db.logger.LogAttrs(ctx, slog.LevelInfo, "creating table", slog.String("table", table.Name))
			if _, err := tx.ExecContext(ctx, table.SQL); err != nil {
				return errors.Wrap(err, "create table", slog.String("table", table.Name))
			}
		case existing.SQL != table.SQL:
			if err := db.rebuildTable(ctx, tx, table, target.columns[table.Name]); err != nil {
				return errors.Wrap(err, "rebuild table", slog.String("table", table.Name))
			}
		}
	}
	return nil
}

// rebuildTable performs steps 4-7 of the 12-step schema change.
func (db *Database) rebuildTable(ctx context.Context, tx *sqlx.Tx, table schemaObject, targetColumns []string) error {
	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrating table",
		slog.String("table", table.Name), slog.String("new_sql", table.SQL))

	tempName := table.Name + "_migration_temp"
	tempSQL := strings.Replace(table.SQL, table.Name, tempName, 1)
	if _, err := tx.ExecContext(ctx, tempSQL); err != nil {
		return errors.Wrap(err, "create table with temporary name", slog.String("query", tempSQL))
	}

	var currentColumns []string
	if err := tx.SelectContext(ctx, &currentColumns, "SELECT name FROM pragma_table_info(?)", table.Name); err != nil {
		return errors.Wrap(err, "query current columns")
	}
	wanted := map[string]bool{}
	for _, column := range targetColumns {
		wanted[column] = true
	}
	var common []string
	for _, column := range currentColumns {
		if wanted[column] {
			// Quoted to handle column names that are SQLite keywords.
			common = append(common, fmt.Sprintf("%q", column))
		}
	}

	if len(common) > 0 {
		columns := strings.Join(common, ", ")
		copySQL := fmt.Sprintf("INSERT INTO %q (%s) SELECT %s FROM %q", tempName, columns, columns, table.Name)
		if _, err := tx.ExecContext(ctx, copySQL); err != nil {
			return errors.Wrap(err, "copy data", slog.String("query", copySQL))
		}
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %q", table.Name)); err != nil {
		return errors.Wrap(err, "drop old table")
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %q RENAME TO %q", tempName, table.Name)); err != nil {
		return errors.Wrap(err, "rename new table")
	}
	return nil
}
