// Package labsearch embeds the lab multi-index search orchestrator in-process.
//
// A Client searches several engine indexes concurrently and returns one result per
// index, so a slow or broken index degrades the response instead of failing it.
//
// # Low-level API
//
//	client, _ := labsearch.New(ctx,
//	    labsearch.WithOpenSearch("http://localhost:9200"),
//	    labsearch.WithIndexes("projects", "samples"),
//	)
//	defer client.Close()
//	res, _ := client.MultiSearch(ctx, labsearch.SearchRequest{
//	    Indexes: []string{"projects", "samples"},
//	    Query:   "RNA Seq",
//	})
//	if res.PartialFailure { ... }
//
// # Typed API
//
//	type Project struct {
//	    ID        string `labsearch:"id,id"`
//	    Name      string `labsearch:"name,name"`
//	    ProjectID string `labsearch:"project_id,field"`
//	    PI        string `labsearch:"principal_investigator,attr"`
//	}
//
//	idx, _ := labsearch.NewIndex[Project](client, "projects")
//	_, _ = idx.Put(ctx, Project{ProjectID: "P-001", Name: "Exome pilot"})
//	page, _ := idx.Search("Exome").Page(1, 20).Sort("name", labsearch.Asc).Do(ctx)
package labsearch
