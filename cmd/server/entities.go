package main

import "shopper/internal/domain/filter"

// registerEntities declares every listable entity. The registry is the
// single source of truth for what the admin API can query and mutate.
func registerEntities(registry *filter.Registry) {
	registry.Register(&filter.EntityConfig{
		Entity:   "products",
		Table:    "products",
		IDColumn: "id",
		Columns: []string{
			"id", "name", "sku", "slug", "description", "price",
			"status", "brand_id", "category_id", "created_at", "updated_at",
		},
		Filterable: []string{
			"name", "sku", "slug", "price", "status",
			"brand_id", "category_id", "created_at", "updated_at",
		},
		Sortable:   []string{"name", "sku", "price", "status", "created_at", "updated_at"},
		Searchable: []string{"name", "sku", "slug"},
		Types: map[string]filter.ColumnType{
			"price":      filter.ColumnNumber,
			"created_at": filter.ColumnTime,
			"updated_at": filter.ColumnTime,
		},
		Relations: []filter.Relation{
			{Name: "brand", Entity: "brands", Table: "brands", ForeignKey: "brand_id", LocalKey: "id", Kind: filter.BelongsTo},
			{Name: "category", Entity: "categories", Table: "categories", ForeignKey: "category_id", LocalKey: "id", Kind: filter.BelongsTo},
		},
		DefaultInclude: []string{"brand"},
		StateColumn:    "status",
		EnableValue:    "active",
		DisableValue:   "disabled",
		Actions:        []filter.Action{filter.ActionEnable, filter.ActionDisable, filter.ActionDelete},
	})

	registry.Register(&filter.EntityConfig{
		Entity:     "brands",
		Table:      "brands",
		Columns:    []string{"id", "name", "slug", "is_enabled", "created_at"},
		Filterable: []string{"name", "slug", "is_enabled", "created_at"},
		Sortable:   []string{"name", "created_at"},
		Searchable: []string{"name", "slug"},
		Types: map[string]filter.ColumnType{
			"is_enabled": filter.ColumnBool,
			"created_at": filter.ColumnTime,
		},
		Relations: []filter.Relation{
			{Name: "products", Entity: "products", Table: "products", ForeignKey: "brand_id", LocalKey: "id", Kind: filter.HasMany},
		},
		StateColumn:  "is_enabled",
		EnableValue:  true,
		DisableValue: false,
		Actions:      []filter.Action{filter.ActionEnable, filter.ActionDisable, filter.ActionDelete},
	})

	registry.Register(&filter.EntityConfig{
		Entity:     "categories",
		Table:      "categories",
		Columns:    []string{"id", "name", "slug", "parent_id", "is_enabled", "created_at"},
		Filterable: []string{"name", "slug", "parent_id", "is_enabled", "created_at"},
		Sortable:   []string{"name", "created_at"},
		Searchable: []string{"name", "slug"},
		Types: map[string]filter.ColumnType{
			"is_enabled": filter.ColumnBool,
			"created_at": filter.ColumnTime,
		},
		StateColumn:  "is_enabled",
		EnableValue:  true,
		DisableValue: false,
		Actions:      []filter.Action{filter.ActionEnable, filter.ActionDisable, filter.ActionDelete},
	})

	registry.Register(&filter.EntityConfig{
		Entity:     "customers",
		Table:      "customers",
		Columns:    []string{"id", "email", "name", "phone", "is_enabled", "created_at"},
		Filterable: []string{"email", "name", "phone", "is_enabled", "created_at"},
		Sortable:   []string{"email", "name", "created_at"},
		Searchable: []string{"email", "name", "phone"},
		Types: map[string]filter.ColumnType{
			"is_enabled": filter.ColumnBool,
			"created_at": filter.ColumnTime,
		},
		Relations: []filter.Relation{
			{Name: "orders", Entity: "orders", Table: "orders", ForeignKey: "customer_id", LocalKey: "id", Kind: filter.HasMany},
		},
		StateColumn:  "is_enabled",
		EnableValue:  true,
		DisableValue: false,
		Actions:      []filter.Action{filter.ActionEnable, filter.ActionDisable},
	})

	// Orders have no on/off toggle: only deletion is supported, and
	// enable/disable requests must be rejected.
	registry.Register(&filter.EntityConfig{
		Entity:     "orders",
		Table:      "orders",
		Columns:    []string{"id", "number", "customer_id", "status", "total", "placed_at", "created_at"},
		Filterable: []string{"number", "customer_id", "status", "total", "placed_at", "created_at"},
		Sortable:   []string{"number", "total", "placed_at", "created_at"},
		Searchable: []string{"number"},
		Types: map[string]filter.ColumnType{
			"total":      filter.ColumnNumber,
			"placed_at":  filter.ColumnTime,
			"created_at": filter.ColumnTime,
		},
		Relations: []filter.Relation{
			{Name: "customer", Entity: "customers", Table: "customers", ForeignKey: "customer_id", LocalKey: "id", Kind: filter.BelongsTo},
			{Name: "items", Entity: "order_items", Table: "order_items", ForeignKey: "order_id", LocalKey: "id", Kind: filter.HasMany},
		},
		DefaultInclude: []string{"customer"},
		Actions:        []filter.Action{filter.ActionDelete},
	})

	registry.Register(&filter.EntityConfig{
		Entity:     "order_items",
		Table:      "order_items",
		Columns:    []string{"id", "order_id", "product_id", "quantity", "unit_price"},
		Filterable: []string{"order_id", "product_id", "quantity", "unit_price"},
		Sortable:   []string{"quantity", "unit_price"},
		Types: map[string]filter.ColumnType{
			"quantity":   filter.ColumnNumber,
			"unit_price": filter.ColumnNumber,
		},
	})
}
