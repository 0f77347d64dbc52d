// Package specdex embeds the specification facet engine in a Go program,
// backed by Redis with the query engine or by SQLite/Postgres.
//
// Specifications group attributes that documents of a type carry. Saving a
// document materializes its attribute values; facet queries then select the
// documents whose values match every active filter.
//
//	client, _ := specdex.New(ctx, specdex.WithSQLite("catalog.db"))
//	defer client.Close()
//
//	client.Specifications().Create(ctx, specdex.Specification{
//	    Name: "Pies", ScopeType: "Item Group", ScopeField: "item_group", ApplyOn: "Pies",
//	    Attributes: []specdex.Attribute{
//	        {Name: "Weight", AppliedOn: "Item", Field: "weight_per_unit", Kind: specdex.KindNumeric},
//	        {Name: "Flavor", AppliedOn: "Item", MultiValued: true},
//	    },
//	})
//	client.Documents("Item").Upsert(ctx, "Apple Pie",
//	    map[string]any{"item_group": "Pies", "weight_per_unit": 700},
//	    map[string]specdex.AttributeValue{"Flavor": specdex.Values("Apple", "Sweet")},
//	)
//	res, _ := client.Facets("Item").Select(ctx, map[string][]string{"Flavor": {"Apple"}})
package specdex
