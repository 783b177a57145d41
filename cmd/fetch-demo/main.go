// Command fetch-demo fetches a fixed set of URLs concurrently and prints
// one line per result. URLs given as arguments replace the fixed set.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Sternrassler/fast-requests/pkg/fetch"
	"github.com/Sternrassler/fast-requests/pkg/logging"
)

var defaultURLs = []string{
	"https://google.com",
	"https://en.wikipedia.com",
	"https://httpbin.org/status/404",
}

func main() {
	cfg := logging.ConfigFromEnv(os.Getenv)
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.Level = logging.LevelError
	}
	logging.Setup(cfg)

	urls := defaultURLs
	if len(os.Args) > 1 {
		urls = os.Args[1:]
	}

	run(os.Stdout, fetch.Default(), urls)
}

// run prints the failures first, then the successes. Per-URL errors never
// change the exit status.
func run(w io.Writer, f *fetch.Fetcher, urls []string) {
	outcomes := f.FetchAll(urls)

	var succeeded []fetch.Outcome
	for _, o := range outcomes {
		if o.OK() {
			succeeded = append(succeeded, o)
			continue
		}
		fmt.Fprintf(w, "Error: %d\n", o.StatusCode())
	}

	for _, o := range succeeded {
		fmt.Fprintf(w, "Status: %d\n", o.StatusCode())
	}
}
