// Package sportdex embeds the sporting facility catalog in a Go program.
//
// The client connects to the document store holding the merged facility
// records and to the search engine holding the text projection and the
// town index:
//
//	client, err := sportdex.New(ctx,
//	    sportdex.WithMongo("mongodb://localhost:27017", "sportdex"),
//	    sportdex.WithRedis("localhost:6379", ""),
//	)
//	defer client.Close(ctx)
//
//	near, _ := client.Installations().GeoSearchByTown(ctx, "Nantes", 5000)
//	towns, _ := client.Towns().Suggest(ctx, "Saint-")
//
// Loading data runs the same pipeline as the sportdex-import command:
//
//	report, _ := client.Import(ctx, sportdex.ImportSources{...})
//	_, _ = client.SyncProjection(ctx)
package sportdex
