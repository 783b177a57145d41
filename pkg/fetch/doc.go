// Package fetch provides concurrent batch fetching of HTTP URLs.
//
// FetchAll issues one GET per URL, all in parallel, and blocks until every
// request has reached a terminal state. The result slice always has the same
// length and order as the input, regardless of completion order:
//
//	outcomes := fetch.FetchAll([]string{
//		"https://example.com",
//		"https://example.org/missing",
//	})
//	for i, o := range outcomes {
//		if o.OK() {
//			fmt.Println(i, o.Response.StatusCode, o.Response.URL, len(o.Response.Text))
//			continue
//		}
//		fmt.Println(i, o.Err.StatusCode, o.Err.Message)
//	}
//
// Each outcome is either a Response (status < 400, final URL after redirects,
// decoded body text) or a RequestError. Status code 0 on a RequestError means
// no HTTP status was available: DNS and connection failures, malformed URLs,
// timeouts, and tasks that panicked.
//
// Every request is bounded by a single client-wide timeout (30 seconds by
// default) covering connect, send, receive and body read. There are no
// retries, and one failing request never affects its siblings.
//
// The package-level FetchAll uses a process-wide Fetcher built once on first
// use. Fetchers are safe for concurrent use.
package fetch
