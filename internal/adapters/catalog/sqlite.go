// Package catalog provides the SQLite-backed local workspace catalog.
//
// A container is a SQLite database file and a dataset is a table inside
// it. The adapter implements the tabular capability set; geometry,
// raster and mosaic operations need a geoprocessing engine and report
// ErrUnsupported.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/domain"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/ports/output"
)

// uniqueNameLimit bounds unique-name probing per container.
const uniqueNameLimit = 10000

// SQLiteCatalog implements output.MosaicCatalog over SQLite containers.
type SQLiteCatalog struct {
	unsupportedGeoprocessing

	mu          sync.Mutex
	connections map[string]*sql.DB
}

// NewSQLiteCatalog creates a catalog with an empty connection cache.
func NewSQLiteCatalog() *SQLiteCatalog {
	return &SQLiteCatalog{
		connections: make(map[string]*sql.DB),
	}
}

// Close closes all open container connections.
func (c *SQLiteCatalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for container, db := range c.connections {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(c.connections, container)
	}
	return firstErr
}

// db returns the cached connection for a container, opening it on
// first use.
func (c *SQLiteCatalog) db(ctx context.Context, container string) (*sql.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if db, ok := c.connections[container]; ok {
		return db, nil
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", container)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	c.connections[container] = db
	return db, nil
}

// split decomposes a dataset path into its container database file and
// table name.
func split(path string) (container, table string, err error) {
	dir, base := filepath.Split(path)
	container = strings.TrimRight(dir, string(filepath.Separator))
	if container == "" || base == "" {
		return "", "", fmt.Errorf("dataset path %q: %w", path, domain.ErrInvalidName)
	}
	return container, base, nil
}

// quote escapes an identifier for embedding in SQL.
func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func catalogErr(operation, path string, err error) error {
	return &domain.CatalogError{Operation: operation, Path: path, Err: err}
}

// Exists reports whether a table is present in its container.
func (c *SQLiteCatalog) Exists(ctx context.Context, path string) (bool, error) {
	container, table, err := split(path)
	if err != nil {
		return false, err
	}
	db, err := c.db(ctx, container)
	if err != nil {
		return false, catalogErr("exists", path, err)
	}

	var count int
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`,
		table,
	).Scan(&count)
	if err != nil {
		return false, catalogErr("exists", path, err)
	}
	return count > 0, nil
}

// Delete drops the table at path. Dropping a missing table succeeds.
func (c *SQLiteCatalog) Delete(ctx context.Context, path string) error {
	container, table, err := split(path)
	if err != nil {
		return err
	}
	db, err := c.db(ctx, container)
	if err != nil {
		return catalogErr("delete", path, err)
	}

	if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+quote(table)); err != nil {
		return catalogErr("delete", path, err)
	}
	return nil
}

// UniqueName probes name, name_0, name_1, ... until a free table name
// is found in container.
func (c *SQLiteCatalog) UniqueName(ctx context.Context, name, container string) (string, error) {
	candidate := name
	for i := 0; i < uniqueNameLimit; i++ {
		exists, err := c.Exists(ctx, filepath.Join(container, candidate))
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s_%d", name, i)
	}
	return "", catalogErr("unique-name", filepath.Join(container, name), domain.ErrInternal)
}

// Describe returns the table's fields and row count.
func (c *SQLiteCatalog) Describe(ctx context.Context, path string) (*domain.DatasetInfo, error) {
	exists, err := c.Exists(ctx, path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrDatasetNotFound)
	}

	fields, err := c.ListFields(ctx, path)
	if err != nil {
		return nil, err
	}
	count, err := c.RowCount(ctx, path)
	if err != nil {
		return nil, err
	}

	return &domain.DatasetInfo{
		Path:     path,
		Kind:     domain.KindTable,
		Fields:   fields,
		RowCount: int64(count),
	}, nil
}

// List enumerates the tables of a container.
func (c *SQLiteCatalog) List(ctx context.Context, container string) ([]domain.DatasetInfo, error) {
	db, err := c.db(ctx, container)
	if err != nil {
		return nil, catalogErr("list", container, err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name`,
	)
	if err != nil {
		return nil, catalogErr("list", container, err)
	}
	defer func() { _ = rows.Close() }()

	var infos []domain.DatasetInfo
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, catalogErr("list", container, err)
		}
		infos = append(infos, domain.DatasetInfo{
			Path:     filepath.Join(container, name),
			Kind:     domain.KindTable,
			RowCount: -1,
		})
	}
	return infos, rows.Err()
}

// sqlType maps a field type onto its SQLite column type.
func sqlType(t domain.FieldType) string {
	switch t {
	case domain.FieldShort, domain.FieldLong:
		return "INTEGER"
	case domain.FieldFloat, domain.FieldDouble:
		return "REAL"
	case domain.FieldBlob:
		return "BLOB"
	default:
		return "TEXT"
	}
}

// fieldType maps a SQLite column type back onto a field type.
func fieldType(sqliteType string) domain.FieldType {
	switch strings.ToUpper(sqliteType) {
	case "INTEGER":
		return domain.FieldLong
	case "REAL":
		return domain.FieldDouble
	case "BLOB":
		return domain.FieldBlob
	default:
		return domain.FieldText
	}
}

// CreateTable creates a table from explicit fields or a same-container
// template's schema.
func (c *SQLiteCatalog) CreateTable(ctx context.Context, container, name string, opts output.TableOptions) error {
	path := filepath.Join(container, name)
	db, err := c.db(ctx, container)
	if err != nil {
		return catalogErr("create-table", path, err)
	}

	if opts.Template != "" {
		templateContainer, templateTable, err := split(opts.Template)
		if err != nil {
			return err
		}
		if templateContainer != container {
			return catalogErr("create-table", path,
				fmt.Errorf("template %s is outside container %s: %w", opts.Template, container, domain.ErrUnsupported))
		}
		stmt := fmt.Sprintf("CREATE TABLE %s AS SELECT * FROM %s WHERE 0", quote(name), quote(templateTable))
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return catalogErr("create-table", path, err)
		}
		return nil
	}

	cols := make([]string, 0, len(opts.Fields))
	for _, f := range opts.Fields {
		col := quote(f.Name) + " " + sqlType(f.Type)
		if !f.Nullable {
			col += " NOT NULL"
		}
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		cols = append(cols, `"OBJECTID" INTEGER`)
	}
	stmt := fmt.Sprintf("CREATE TABLE %s (%s)", quote(name), strings.Join(cols, ", "))
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return catalogErr("create-table", path, err)
	}
	return nil
}

// RowCount returns the number of rows in the table.
func (c *SQLiteCatalog) RowCount(ctx context.Context, path string) (int, error) {
	container, table, err := split(path)
	if err != nil {
		return 0, err
	}
	db, err := c.db(ctx, container)
	if err != nil {
		return 0, catalogErr("row-count", path, err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quote(table)).Scan(&count); err != nil {
		return 0, catalogErr("row-count", path, err)
	}
	return count, nil
}

// ListFields reads the table schema via PRAGMA table_info.
func (c *SQLiteCatalog) ListFields(ctx context.Context, path string) ([]domain.Field, error) {
	container, table, err := split(path)
	if err != nil {
		return nil, err
	}
	db, err := c.db(ctx, container)
	if err != nil {
		return nil, catalogErr("list-fields", path, err)
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quote(table)))
	if err != nil {
		return nil, catalogErr("list-fields", path, err)
	}
	defer func() { _ = rows.Close() }()

	var fields []domain.Field
	for rows.Next() {
		var (
			cid          int
			name, ctype  string
			notNull, pk  int
			defaultValue sql.NullString
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &defaultValue, &pk); err != nil {
			return nil, catalogErr("list-fields", path, err)
		}
		fields = append(fields, domain.Field{
			Name:     name,
			Type:     fieldType(ctype),
			Nullable: notNull == 0,
		})
	}
	return fields, rows.Err()
}

// AddField adds a column to the table.
func (c *SQLiteCatalog) AddField(ctx context.Context, path string, field domain.Field) error {
	container, table, err := split(path)
	if err != nil {
		return err
	}
	db, err := c.db(ctx, container)
	if err != nil {
		return catalogErr("add-field", path, err)
	}

	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", quote(table), quote(field.Name), sqlType(field.Type))
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return catalogErr("add-field", path, err)
	}
	return nil
}

// DeleteField drops columns from the table.
func (c *SQLiteCatalog) DeleteField(ctx context.Context, path string, fields ...string) error {
	container, table, err := split(path)
	if err != nil {
		return err
	}
	db, err := c.db(ctx, container)
	if err != nil {
		return catalogErr("delete-field", path, err)
	}

	for _, f := range fields {
		stmt := fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", quote(table), quote(f))
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return catalogErr("delete-field", path, err)
		}
	}
	return nil
}

// AddIndex creates an attribute index over the given fields.
func (c *SQLiteCatalog) AddIndex(ctx context.Context, path string, fields []string, opts output.IndexOptions) error {
	container, table, err := split(path)
	if err != nil {
		return err
	}
	db, err := c.db(ctx, container)
	if err != nil {
		return catalogErr("add-index", path, err)
	}

	name := opts.Name
	if name == "" {
		name = "idx_" + table + "_" + strings.Join(fields, "_")
	}
	direction := " ASC"
	if !opts.Ascending {
		direction = " DESC"
	}
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = quote(f) + direction
	}
	unique := ""
	if opts.Unique {
		unique = "UNIQUE "
	}
	stmt := fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS %s ON %s (%s)",
		unique, quote(name), quote(table), strings.Join(cols, ", "))
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return catalogErr("add-index", path, err)
	}
	return nil
}

// CalculateField assigns a SQL expression to a field for every row
// matching where.
func (c *SQLiteCatalog) CalculateField(ctx context.Context, path, field, expression, where string) error {
	container, table, err := split(path)
	if err != nil {
		return err
	}
	db, err := c.db(ctx, container)
	if err != nil {
		return catalogErr("calculate-field", path, err)
	}

	stmt := fmt.Sprintf("UPDATE %s SET %s = %s", quote(table), quote(field), expression) //#nosec G201 -- expression/where are catalog expressions from trusted workflows
	if where != "" {
		stmt += " WHERE " + where
	}
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return catalogErr("calculate-field", path, err)
	}
	return nil
}

// SelectByAttribute counts the rows matching where. The store holds no
// selection state, so only NEW_SELECTION is meaningful here.
func (c *SQLiteCatalog) SelectByAttribute(ctx context.Context, path, selectionType, where string) (int, error) {
	if selectionType != domain.NewSelection && selectionType != domain.ClearSelection {
		return 0, catalogErr("select-by-attribute", path,
			fmt.Errorf("selection type %s: %w", selectionType, domain.ErrUnsupported))
	}
	if selectionType == domain.ClearSelection {
		return 0, nil
	}

	container, table, err := split(path)
	if err != nil {
		return 0, err
	}
	db, err := c.db(ctx, container)
	if err != nil {
		return 0, catalogErr("select-by-attribute", path, err)
	}

	stmt := "SELECT COUNT(*) FROM " + quote(table)
	if where != "" {
		stmt += " WHERE " + where
	}
	var count int
	if err := db.QueryRowContext(ctx, stmt).Scan(&count); err != nil {
		return 0, catalogErr("select-by-attribute", path, err)
	}
	return count, nil
}

// JoinField copies fields from a same-container table onto path,
// matching inField against joinField.
func (c *SQLiteCatalog) JoinField(ctx context.Context, path, inField, joinPath, joinField string, fields []string) error {
	container, table, err := split(path)
	if err != nil {
		return err
	}
	joinContainer, joinTable, err := split(joinPath)
	if err != nil {
		return err
	}
	if joinContainer != container {
		return catalogErr("join-field", path,
			fmt.Errorf("join table %s is outside container %s: %w", joinPath, container, domain.ErrUnsupported))
	}
	db, err := c.db(ctx, container)
	if err != nil {
		return catalogErr("join-field", path, err)
	}

	if len(fields) == 0 {
		joined, err := c.ListFields(ctx, joinPath)
		if err != nil {
			return err
		}
		for _, f := range joined {
			if f.Name != joinField {
				fields = append(fields, f.Name)
			}
		}
	}

	existing, err := c.ListFields(ctx, path)
	if err != nil {
		return err
	}
	has := make(map[string]bool, len(existing))
	for _, f := range existing {
		has[f.Name] = true
	}

	for _, f := range fields {
		if !has[f] {
			stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", quote(table), quote(f))
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return catalogErr("join-field", path, err)
			}
		}
		stmt := fmt.Sprintf(
			"UPDATE %s SET %s = (SELECT j.%s FROM %s j WHERE j.%s = %s.%s)",
			quote(table), quote(f),
			quote(f), quote(joinTable), quote(joinField), quote(table), quote(inField),
		) //#nosec G201 -- table/column names from trusted catalog paths
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return catalogErr("join-field", path, err)
		}
	}
	return nil
}

// Sort writes src's rows into dst ordered by orderBy. Both tables must
// share a container.
func (c *SQLiteCatalog) Sort(ctx context.Context, src, dst string, orderBy []domain.SortField) error {
	container, srcTable, err := split(src)
	if err != nil {
		return err
	}
	dstContainer, dstTable, err := split(dst)
	if err != nil {
		return err
	}
	if dstContainer != container {
		return catalogErr("sort", src,
			fmt.Errorf("destination %s is outside container %s: %w", dst, container, domain.ErrUnsupported))
	}
	db, err := c.db(ctx, container)
	if err != nil {
		return catalogErr("sort", src, err)
	}

	order := make([]string, len(orderBy))
	for i, f := range orderBy {
		order[i] = quote(f.Name)
		if f.Descending {
			order[i] += " DESC"
		}
	}
	stmt := fmt.Sprintf("CREATE TABLE %s AS SELECT * FROM %s ORDER BY %s",
		quote(dstTable), quote(srcTable), strings.Join(order, ", "))
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return catalogErr("sort", src, err)
	}
	return nil
}

// DeleteIdentical keeps the first row of every duplicate group over
// the given fields and removes the rest.
func (c *SQLiteCatalog) DeleteIdentical(ctx context.Context, path string, fields []string) error {
	container, table, err := split(path)
	if err != nil {
		return err
	}
	db, err := c.db(ctx, container)
	if err != nil {
		return catalogErr("delete-identical", path, err)
	}

	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = quote(f)
	}
	group := strings.Join(cols, ", ")
	stmt := fmt.Sprintf(
		"DELETE FROM %s WHERE rowid NOT IN (SELECT MIN(rowid) FROM %s GROUP BY %s)",
		quote(table), quote(table), group,
	)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return catalogErr("delete-identical", path, err)
	}
	return nil
}

// CopyRows copies src into a new same-container table dst.
func (c *SQLiteCatalog) CopyRows(ctx context.Context, src, dst string) error {
	container, srcTable, err := split(src)
	if err != nil {
		return err
	}
	dstContainer, dstTable, err := split(dst)
	if err != nil {
		return err
	}
	if dstContainer != container {
		return catalogErr("copy-rows", src,
			fmt.Errorf("destination %s is outside container %s: %w", dst, container, domain.ErrUnsupported))
	}
	db, err := c.db(ctx, container)
	if err != nil {
		return catalogErr("copy-rows", src, err)
	}

	stmt := fmt.Sprintf("CREATE TABLE %s AS SELECT * FROM %s", quote(dstTable), quote(srcTable))
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return catalogErr("copy-rows", src, err)
	}
	return nil
}

// SearchRows returns a read cursor over the selected fields.
func (c *SQLiteCatalog) SearchRows(ctx context.Context, path string, fields []string, where string) (output.RowCursor, error) {
	container, table, err := split(path)
	if err != nil {
		return nil, err
	}
	db, err := c.db(ctx, container)
	if err != nil {
		return nil, catalogErr("search-rows", path, err)
	}

	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = quote(f)
	}
	stmt := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), quote(table))
	if where != "" {
		stmt += " WHERE " + where
	}
	rows, err := db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, catalogErr("search-rows", path, err)
	}
	return rows, nil
}

// UpdateRows returns a read-write cursor over the selected fields. The
// matching rowids are materialized up front so updates do not disturb
// the iteration.
func (c *SQLiteCatalog) UpdateRows(ctx context.Context, path string, fields []string, where string) (output.UpdateCursor, error) {
	container, table, err := split(path)
	if err != nil {
		return nil, err
	}
	db, err := c.db(ctx, container)
	if err != nil {
		return nil, catalogErr("update-rows", path, err)
	}

	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = quote(f)
	}
	stmt := fmt.Sprintf("SELECT rowid, %s FROM %s", strings.Join(cols, ", "), quote(table))
	if where != "" {
		stmt += " WHERE " + where
	}
	rows, err := db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, catalogErr("update-rows", path, err)
	}
	defer func() { _ = rows.Close() }()

	cursor := &updateCursor{
		ctx:    ctx,
		db:     db,
		table:  table,
		fields: fields,
		pos:    -1,
	}
	for rows.Next() {
		var rowid int64
		values := make([]any, len(fields))
		dest := make([]any, 0, len(fields)+1)
		dest = append(dest, &rowid)
		for i := range values {
			dest = append(dest, &values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, catalogErr("update-rows", path, err)
		}
		cursor.rowids = append(cursor.rowids, rowid)
		cursor.rows = append(cursor.rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, catalogErr("update-rows", path, err)
	}
	return cursor, nil
}

// InsertRows appends rows in a single transaction.
func (c *SQLiteCatalog) InsertRows(ctx context.Context, path string, fields []string, rows [][]any) error {
	container, table, err := split(path)
	if err != nil {
		return err
	}
	db, err := c.db(ctx, container)
	if err != nil {
		return catalogErr("insert-rows", path, err)
	}

	cols := make([]string, len(fields))
	placeholders := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = quote(f)
		placeholders[i] = "?"
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(table), strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return catalogErr("insert-rows", path, err)
	}
	prepared, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		_ = tx.Rollback()
		return catalogErr("insert-rows", path, err)
	}
	defer func() { _ = prepared.Close() }()

	for _, row := range rows {
		if _, err := prepared.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return catalogErr("insert-rows", path, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return catalogErr("insert-rows", path, err)
	}
	return nil
}

// updateCursor is a rowid-backed read-write cursor.
type updateCursor struct {
	ctx    context.Context
	db     *sql.DB
	table  string
	fields []string

	rowids []int64
	rows   [][]any
	pos    int
	err    error
}

func (u *updateCursor) Next() bool {
	if u.pos+1 >= len(u.rowids) {
		return false
	}
	u.pos++
	return true
}

func (u *updateCursor) Scan(dest ...any) error {
	if u.pos < 0 || u.pos >= len(u.rows) {
		return fmt.Errorf("scan outside row: %w", domain.ErrInternal)
	}
	row := u.rows[u.pos]
	if len(dest) != len(row) {
		return fmt.Errorf("scan expects %d destinations, got %d: %w", len(row), len(dest), domain.ErrInvalidInput)
	}
	for i, d := range dest {
		if err := assign(d, row[i]); err != nil {
			return err
		}
	}
	return nil
}

func (u *updateCursor) Err() error { return u.err }

func (u *updateCursor) Close() error { return nil }

// Update rewrites the current row's cursor fields in order.
func (u *updateCursor) Update(values ...any) error {
	if u.pos < 0 || u.pos >= len(u.rowids) {
		return fmt.Errorf("update outside row: %w", domain.ErrInternal)
	}
	if len(values) != len(u.fields) {
		return fmt.Errorf("update expects %d values, got %d: %w", len(u.fields), len(values), domain.ErrInvalidInput)
	}

	sets := make([]string, len(u.fields))
	for i, f := range u.fields {
		sets[i] = quote(f) + " = ?"
	}
	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE rowid = ?", quote(u.table), strings.Join(sets, ", "))
	args := append(append([]any{}, values...), u.rowids[u.pos])
	if _, err := u.db.ExecContext(u.ctx, stmt, args...); err != nil {
		u.err = err
		return err
	}
	return nil
}

// DeleteRow removes the current row.
func (u *updateCursor) DeleteRow() error {
	if u.pos < 0 || u.pos >= len(u.rowids) {
		return fmt.Errorf("delete outside row: %w", domain.ErrInternal)
	}
	stmt := fmt.Sprintf("DELETE FROM %s WHERE rowid = ?", quote(u.table))
	if _, err := u.db.ExecContext(u.ctx, stmt, u.rowids[u.pos]); err != nil {
		u.err = err
		return err
	}
	return nil
}

// assign copies a scanned database value into a typed destination.
func assign(dest, value any) error {
	switch d := dest.(type) {
	case *any:
		*d = value
		return nil
	case *string:
		switch v := value.(type) {
		case string:
			*d = v
			return nil
		case []byte:
			*d = string(v)
			return nil
		}
	case *int64:
		if v, ok := value.(int64); ok {
			*d = v
			return nil
		}
	case *int:
		if v, ok := value.(int64); ok {
			*d = int(v)
			return nil
		}
	case *float64:
		switch v := value.(type) {
		case float64:
			*d = v
			return nil
		case int64:
			*d = float64(v)
			return nil
		}
	case *bool:
		if v, ok := value.(int64); ok {
			*d = v != 0
			return nil
		}
	}
	return fmt.Errorf("cannot scan %T into %T: %w", value, dest, domain.ErrInvalidInput)
}
