// Package github imports repository discussion content into the search
// corpus. Issues, pull requests, and their comments become content
// items under a github source, embedded at import time when an
// embedding service is available.
//
// The client throttles proactively with a token bucket and reactively
// from the X-RateLimit-* response headers, so long imports stay inside
// the authenticated API quota.
package github
