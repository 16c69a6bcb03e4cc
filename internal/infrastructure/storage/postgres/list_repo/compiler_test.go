package list_repo

import (
	"reflect"
	"testing"

	"shopper/internal/domain/filter"
)

func productsConfig(t *testing.T) *filter.EntityConfig {
	t.Helper()
	r := filter.NewRegistry()
	r.Register(&filter.EntityConfig{
		Entity:     "products",
		Table:      "products",
		Columns:    []string{"id", "name", "sku", "price", "status", "brand_id"},
		Filterable: []string{"name", "sku", "price", "status", "brand_id", "created_at"},
		Sortable:   []string{"name", "price", "created_at"},
		Searchable: []string{"name", "sku"},
		Types: map[string]filter.ColumnType{
			"price":      filter.ColumnNumber,
			"created_at": filter.ColumnTime,
		},
		Relations: []filter.Relation{
			{Name: "brand", Entity: "brands", Table: "brands", ForeignKey: "brand_id", LocalKey: "id", Kind: filter.BelongsTo},
			{Name: "variants", Entity: "variants", Table: "product_variants", ForeignKey: "product_id", LocalKey: "id", Kind: filter.HasMany},
		},
	})
	cfg, err := r.Get("products")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	return cfg
}

func baseQuery(clauses ...filter.Clause) *filter.ParsedQuery {
	return &filter.ParsedQuery{
		Entity:  "products",
		Clauses: clauses,
		Page:    1,
		PerPage: 15,
	}
}

const selectHead = "SELECT products.id, products.name, products.sku, products.price, products.status, products.brand_id FROM products"

func TestCompile_Predicates(t *testing.T) {
	cfg := productsConfig(t)

	tests := []struct {
		name     string
		clause   filter.Clause
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "Equal",
			clause:   filter.Clause{Field: "status", Op: filter.OpEq, Value: "active"},
			wantSQL:  selectHead + " WHERE products.status = $1 LIMIT 15 OFFSET 0",
			wantArgs: []any{"active"},
		},
		{
			name:     "NotEqual",
			clause:   filter.Clause{Field: "status", Op: filter.OpNe, Value: "draft"},
			wantSQL:  selectHead + " WHERE products.status <> $1 LIMIT 15 OFFSET 0",
			wantArgs: []any{"draft"},
		},
		{
			name:     "GreaterOrEqualCoercesNumber",
			clause:   filter.Clause{Field: "price", Op: filter.OpGte, Value: "100", Type: filter.ColumnNumber},
			wantSQL:  selectHead + " WHERE products.price >= $1 LIMIT 15 OFFSET 0",
			wantArgs: []any{int64(100)},
		},
		{
			name:     "LessThanFloat",
			clause:   filter.Clause{Field: "price", Op: filter.OpLt, Value: "19.99", Type: filter.ColumnNumber},
			wantSQL:  selectHead + " WHERE products.price < $1 LIMIT 15 OFFSET 0",
			wantArgs: []any{19.99},
		},
		{
			name:     "NumericLookingTextStaysText",
			clause:   filter.Clause{Field: "sku", Op: filter.OpEq, Value: "123456"},
			wantSQL:  selectHead + " WHERE products.sku = $1 LIMIT 15 OFFSET 0",
			wantArgs: []any{"123456"},
		},
		{
			name:     "Like",
			clause:   filter.Clause{Field: "name", Op: filter.OpLike, Value: "shoe"},
			wantSQL:  selectHead + " WHERE products.name ILIKE $1 LIMIT 15 OFFSET 0",
			wantArgs: []any{"%shoe%"},
		},
		{
			name:     "NotLike",
			clause:   filter.Clause{Field: "name", Op: filter.OpNotLike, Value: "shoe"},
			wantSQL:  selectHead + " WHERE products.name NOT ILIKE $1 LIMIT 15 OFFSET 0",
			wantArgs: []any{"%shoe%"},
		},
		{
			name:     "StartsWith",
			clause:   filter.Clause{Field: "sku", Op: filter.OpStarts, Value: "NK-"},
			wantSQL:  selectHead + " WHERE products.sku ILIKE $1 LIMIT 15 OFFSET 0",
			wantArgs: []any{"NK-%"},
		},
		{
			name:     "EndsWith",
			clause:   filter.Clause{Field: "sku", Op: filter.OpEnds, Value: "-XL"},
			wantSQL:  selectHead + " WHERE products.sku ILIKE $1 LIMIT 15 OFFSET 0",
			wantArgs: []any{"%-XL"},
		},
		{
			name:     "In",
			clause:   filter.Clause{Field: "status", Op: filter.OpIn, Values: []string{"active", "draft"}},
			wantSQL:  selectHead + " WHERE products.status IN ($1,$2) LIMIT 15 OFFSET 0",
			wantArgs: []any{"active", "draft"},
		},
		{
			name:     "EmptyInMatchesNothing",
			clause:   filter.Clause{Field: "status", Op: filter.OpIn, Values: []string{}},
			wantSQL:  selectHead + " WHERE (1=0) LIMIT 15 OFFSET 0",
			wantArgs: nil,
		},
		{
			name:     "EmptyNotInMatchesEverything",
			clause:   filter.Clause{Field: "status", Op: filter.OpNotIn, Values: []string{}},
			wantSQL:  selectHead + " WHERE (1=1) LIMIT 15 OFFSET 0",
			wantArgs: nil,
		},
		{
			name:     "Between",
			clause:   filter.Clause{Field: "price", Op: filter.OpBetween, Values: []string{"10", "50"}, Type: filter.ColumnNumber},
			wantSQL:  selectHead + " WHERE products.price BETWEEN $1 AND $2 LIMIT 15 OFFSET 0",
			wantArgs: []any{int64(10), int64(50)},
		},
		{
			name:     "BetweenWithOneBoundIsNoop",
			clause:   filter.Clause{Field: "price", Op: filter.OpBetween, Values: []string{"10"}, Type: filter.ColumnNumber},
			wantSQL:  selectHead + " LIMIT 15 OFFSET 0",
			wantArgs: nil,
		},
		{
			name:     "NotBetween",
			clause:   filter.Clause{Field: "price", Op: filter.OpNBetween, Values: []string{"10", "50"}, Type: filter.ColumnNumber},
			wantSQL:  selectHead + " WHERE products.price NOT BETWEEN $1 AND $2 LIMIT 15 OFFSET 0",
			wantArgs: []any{int64(10), int64(50)},
		},
		{
			name:     "Null",
			clause:   filter.Clause{Field: "brand_id", Op: filter.OpNull},
			wantSQL:  selectHead + " WHERE products.brand_id IS NULL LIMIT 15 OFFSET 0",
			wantArgs: nil,
		},
		{
			name:     "NotNull",
			clause:   filter.Clause{Field: "brand_id", Op: filter.OpNotNull},
			wantSQL:  selectHead + " WHERE products.brand_id IS NOT NULL LIMIT 15 OFFSET 0",
			wantArgs: nil,
		},
		{
			name:     "DateTruncation",
			clause:   filter.Clause{Field: "created_at", Op: filter.OpDate, Value: "2026-01-15"},
			wantSQL:  selectHead + " WHERE products.created_at::date = $1 LIMIT 15 OFFSET 0",
			wantArgs: []any{"2026-01-15"},
		},
		{
			name:     "MonthExtract",
			clause:   filter.Clause{Field: "created_at", Op: filter.OpMonth, Value: "6"},
			wantSQL:  selectHead + " WHERE EXTRACT(MONTH FROM products.created_at) = $1 LIMIT 15 OFFSET 0",
			wantArgs: []any{int64(6)},
		},
		{
			name:     "YearExtract",
			clause:   filter.Clause{Field: "created_at", Op: filter.OpYear, Value: "2026"},
			wantSQL:  selectHead + " WHERE EXTRACT(YEAR FROM products.created_at) = $1 LIMIT 15 OFFSET 0",
			wantArgs: []any{int64(2026)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Compile(cfg, baseQuery(tt.clause))
			if err != nil {
				t.Fatalf("Compile failed: %v", err)
			}
			if plan.DataSQL != tt.wantSQL {
				t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", tt.wantSQL, plan.DataSQL)
			}
			if !argsEqual(plan.DataArgs, tt.wantArgs) {
				t.Errorf("Args mismatch\nwant: %v\ngot:  %v", tt.wantArgs, plan.DataArgs)
			}
		})
	}
}

func TestCompile_RelationExists(t *testing.T) {
	cfg := productsConfig(t)

	t.Run("BelongsTo", func(t *testing.T) {
		plan, err := Compile(cfg, baseQuery(
			filter.Clause{Field: "brand.slug", Op: filter.OpEq, Value: "nike"},
		))
		if err != nil {
			t.Fatalf("Compile failed: %v", err)
		}
		want := selectHead + " WHERE EXISTS (SELECT 1 FROM brands WHERE brands.id = products.brand_id AND brands.slug = $1) LIMIT 15 OFFSET 0"
		if plan.DataSQL != want {
			t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", want, plan.DataSQL)
		}
		if !argsEqual(plan.DataArgs, []any{"nike"}) {
			t.Errorf("Args mismatch: %v", plan.DataArgs)
		}
	})

	t.Run("HasMany", func(t *testing.T) {
		plan, err := Compile(cfg, baseQuery(
			filter.Clause{Field: "variants.stock", Op: filter.OpGt, Value: "0", Type: filter.ColumnNumber},
		))
		if err != nil {
			t.Fatalf("Compile failed: %v", err)
		}
		want := selectHead + " WHERE EXISTS (SELECT 1 FROM product_variants WHERE product_variants.product_id = products.id AND product_variants.stock > $1) LIMIT 15 OFFSET 0"
		if plan.DataSQL != want {
			t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", want, plan.DataSQL)
		}
	})

	t.Run("UnknownRelationDropped", func(t *testing.T) {
		plan, err := Compile(cfg, baseQuery(
			filter.Clause{Field: "warehouse.code", Op: filter.OpEq, Value: "A1"},
		))
		if err != nil {
			t.Fatalf("Compile failed: %v", err)
		}
		want := selectHead + " LIMIT 15 OFFSET 0"
		if plan.DataSQL != want {
			t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", want, plan.DataSQL)
		}
	})
}

func TestCompile_SearchSortAndWindow(t *testing.T) {
	cfg := productsConfig(t)

	q := &filter.ParsedQuery{
		Entity: "products",
		Clauses: []filter.Clause{
			{Field: "status", Op: filter.OpEq, Value: "active"},
		},
		Search:  "run",
		Sort:    []filter.SortField{{Field: "price", Desc: true}, {Field: "name"}},
		Page:    3,
		PerPage: 20,
	}

	plan, err := Compile(cfg, q)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	wantData := selectHead +
		" WHERE products.status = $1 AND (products.name ILIKE $2 OR products.sku ILIKE $3)" +
		" ORDER BY products.price DESC, products.name ASC LIMIT 20 OFFSET 40"
	if plan.DataSQL != wantData {
		t.Errorf("data SQL mismatch\nwant: %s\ngot:  %s", wantData, plan.DataSQL)
	}
	if !argsEqual(plan.DataArgs, []any{"active", "%run%", "%run%"}) {
		t.Errorf("data args mismatch: %v", plan.DataArgs)
	}

	wantCount := "SELECT COUNT(*) FROM (SELECT 1 FROM products WHERE products.status = $1 AND (products.name ILIKE $2 OR products.sku ILIKE $3)) AS sub"
	if plan.CountSQL != wantCount {
		t.Errorf("count SQL mismatch\nwant: %s\ngot:  %s", wantCount, plan.CountSQL)
	}
}

func TestCompile_FieldSelection(t *testing.T) {
	cfg := productsConfig(t)

	q := &filter.ParsedQuery{
		Entity:  "products",
		Fields:  []string{"id", "name"},
		Page:    1,
		PerPage: 15,
	}
	plan, err := Compile(cfg, q)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	want := "SELECT products.id, products.name FROM products LIMIT 15 OFFSET 0"
	if plan.DataSQL != want {
		t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", want, plan.DataSQL)
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		raw  string
		typ  filter.ColumnType
		want any
	}{
		{"100", filter.ColumnNumber, int64(100)},
		{"-3", filter.ColumnNumber, int64(-3)},
		{"19.99", filter.ColumnNumber, 19.99},
		{"not-a-number", filter.ColumnNumber, "not-a-number"},
		{"true", filter.ColumnBool, true},
		{"false", filter.ColumnBool, false},
		{"maybe", filter.ColumnBool, "maybe"},
		// Undeclared columns are text: a digit-only SKU or zip code must
		// reach the driver as a string.
		{"100", filter.ColumnText, "100"},
		{"true", filter.ColumnText, "true"},
		{"active", filter.ColumnText, "active"},
		{"2026-01-15", filter.ColumnTime, "2026-01-15"},
	}
	for _, tt := range tests {
		if got := coerce(tt.raw, tt.typ); got != tt.want {
			t.Errorf("coerce(%q, %q) = %v (%T), want %v (%T)", tt.raw, tt.typ, got, got, tt.want, tt.want)
		}
	}
}

func argsEqual(got, want []any) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if !reflect.DeepEqual(got[i], want[i]) {
			return false
		}
	}
	return true
}
