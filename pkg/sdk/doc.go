// Package sdk provides a Go client for the ragfuse hybrid search service.
//
//	client, _ := sdk.New("http://localhost:8080", sdk.WithAPIKey("secret"))
//
//	_, _, _ = client.UpsertFragment(ctx, "faq-1", sdk.UpsertFragmentRequest{
//	    Text:     "Refunds are processed within 5 business days.",
//	    Metadata: map[string]string{"lang": "en"},
//	})
//
//	results, _ := client.Search(ctx, sdk.SearchRequest{
//	    Query: "how long do refunds take",
//	    K:     3,
//	})
//
// All errors carry the server's error code; match the common cases with
// errors.Is against the exported sentinels.
package sdk
