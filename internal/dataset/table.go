package dataset

import (
	"context"
	"log/slog"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/domain"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/ports/output"
)

// Table is a handle over a tabular dataset.
type Table struct {
	*Dataset
	cat output.TableCatalog
}

// NewTable opens a table handle. The locator may be a full path or, in
// combination with opts.Name, a container. Table names are sanitized
// with the default substitution map unless opts.Sanitize overrides it.
func NewTable(ctx context.Context, cat output.TableCatalog, locator string, opts Options, logger *slog.Logger) (*Table, error) {
	if opts.Sanitize == nil {
		opts.Sanitize = domain.DefaultSanitizeMap()
	}
	d, err := newDataset(ctx, cat, locator, opts, logger)
	if err != nil {
		return nil, err
	}
	return &Table{Dataset: d, cat: cat}, nil
}

// NewTempTable opens a temporary table in the scratch container. An
// empty name defaults to "TempTable".
func NewTempTable(ctx context.Context, cat output.TableCatalog, name, scratch string, logger *slog.Logger) (*Table, error) {
	if name == "" {
		name = "TempTable"
	}
	return NewTable(ctx, cat, name, Options{Temporary: true, Scratch: scratch}, logger)
}

// Create materializes the table in the catalog.
func (t *Table) Create(ctx context.Context, opts output.TableOptions) error {
	if err := t.cat.CreateTable(ctx, t.Container(), t.Name(), opts); err != nil {
		return err
	}
	t.logOp("created table", "container", t.Container())
	return nil
}

// Count returns the number of rows.
func (t *Table) Count(ctx context.Context) (int, error) {
	return t.cat.RowCount(ctx, t.Path())
}

// Fields lists the table's attribute fields.
func (t *Table) Fields(ctx context.Context) ([]domain.Field, error) {
	fields, err := t.cat.ListFields(ctx, t.Path())
	if err != nil {
		return nil, err
	}
	t.logger.Debug("listed fields", "path", t.Path(), "count", len(fields))
	return fields, nil
}

// FieldExists reports whether the table has a field with the given name.
func (t *Table) FieldExists(ctx context.Context, name string) (bool, error) {
	fields, err := t.cat.ListFields(ctx, t.Path())
	if err != nil {
		return false, err
	}
	for _, f := range fields {
		if f.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// AddField adds an attribute field.
func (t *Table) AddField(ctx context.Context, field domain.Field) error {
	if err := t.cat.AddField(ctx, t.Path(), field); err != nil {
		return err
	}
	t.logOp("added field", "field", field.Name)
	return nil
}

// AddFields adds several attribute fields.
func (t *Table) AddFields(ctx context.Context, fields []domain.Field) error {
	for _, f := range fields {
		if err := t.cat.AddField(ctx, t.Path(), f); err != nil {
			return err
		}
	}
	t.logOp("added fields", "count", len(fields))
	return nil
}

// DeleteField drops one or more attribute fields.
func (t *Table) DeleteField(ctx context.Context, names ...string) error {
	if err := t.cat.DeleteField(ctx, t.Path(), names...); err != nil {
		return err
	}
	t.logOp("deleted fields", "fields", names)
	return nil
}

// AddIndex adds an attribute index over the given fields.
func (t *Table) AddIndex(ctx context.Context, fields []string, opts output.IndexOptions) error {
	if err := t.cat.AddIndex(ctx, t.Path(), fields, opts); err != nil {
		return err
	}
	t.logOp("added index", "fields", fields, "index", opts.Name)
	return nil
}

// CalculateField assigns expression to field for every row matching
// where; an empty where updates all rows.
func (t *Table) CalculateField(ctx context.Context, field, expression, where string) error {
	if err := t.cat.CalculateField(ctx, t.Path(), field, expression, where); err != nil {
		return err
	}
	t.logOp("calculated field", "field", field)
	return nil
}

// FieldCalc pairs a field with the expression assigned to it.
type FieldCalc struct {
	Field      string
	Expression string
}

// CalculateFields runs several field calculations against the same
// where clause.
func (t *Table) CalculateFields(ctx context.Context, calcs []FieldCalc, where string) error {
	for _, c := range calcs {
		if err := t.cat.CalculateField(ctx, t.Path(), c.Field, c.Expression, where); err != nil {
			return err
		}
	}
	t.logOp("calculated fields", "count", len(calcs))
	return nil
}

// CreateAndCalculateField adds a field and immediately populates it.
func (t *Table) CreateAndCalculateField(ctx context.Context, field domain.Field, expression string) error {
	if err := t.AddField(ctx, field); err != nil {
		return err
	}
	return t.CalculateField(ctx, field.Name, expression, "")
}

// SelectByAttribute applies an attribute selection and returns the
// number of selected rows.
func (t *Table) SelectByAttribute(ctx context.Context, selectionType, where string) (int, error) {
	n, err := t.cat.SelectByAttribute(ctx, t.Path(), selectionType, where)
	if err != nil {
		return 0, err
	}
	t.logOp("selected by attribute", "selected", n)
	return n, nil
}

// JoinField permanently joins fields from another table. An empty
// joinField matches inField on both sides; nil fields joins everything.
func (t *Table) JoinField(ctx context.Context, inField string, join *Table, joinField string, fields []string) error {
	if joinField == "" {
		joinField = inField
	}
	if err := t.cat.JoinField(ctx, t.Path(), inField, join.Path(), joinField, fields); err != nil {
		return err
	}
	t.logOp("joined table", "join", join.Path())
	return nil
}

// Sort writes this table's rows into out ordered by field.
func (t *Table) Sort(ctx context.Context, out *Table, field string, descending bool) error {
	order := []domain.SortField{{Name: field, Descending: descending}}
	if err := t.cat.Sort(ctx, t.Path(), out.Path(), order); err != nil {
		return err
	}
	t.logOp("sorted", "out", out.Path(), "field", field)
	return nil
}

// DeleteIdentical removes rows duplicated across the given fields.
func (t *Table) DeleteIdentical(ctx context.Context, fields ...string) error {
	if err := t.cat.DeleteIdentical(ctx, t.Path(), fields); err != nil {
		return err
	}
	t.logOp("deleted identical rows", "fields", fields)
	return nil
}

// CopyRowsTo copies all rows into another table.
func (t *Table) CopyRowsTo(ctx context.Context, out *Table) error {
	if err := t.cat.CopyRows(ctx, t.Path(), out.Path()); err != nil {
		return err
	}
	t.logOp("copied rows", "out", out.Path())
	return nil
}

// SearchRows opens a read-only cursor over the given fields. The
// cursor is finite and cannot be restarted once consumed.
func (t *Table) SearchRows(ctx context.Context, fields []string, where string) (output.RowCursor, error) {
	return t.cat.SearchRows(ctx, t.Path(), fields, where)
}

// UpdateRows opens a read-write cursor over the given fields.
func (t *Table) UpdateRows(ctx context.Context, fields []string, where string) (output.UpdateCursor, error) {
	return t.cat.UpdateRows(ctx, t.Path(), fields, where)
}

// InsertRows appends rows, each in the order of fields.
func (t *Table) InsertRows(ctx context.Context, fields []string, rows [][]any) error {
	if err := t.cat.InsertRows(ctx, t.Path(), fields, rows); err != nil {
		return err
	}
	t.logOp("inserted rows", "count", len(rows))
	return nil
}
