// Package httputil provides the HTTP plumbing shared by remote collection
// sources.
//
// # Overview
//
//   - [Client]: JSON-over-HTTP requests with default headers, status
//     mapping and automatic retry
//   - [Retry]: retry with exponential backoff for transient failures
//
// # Retry
//
// [Retry] only retries errors wrapped in [RetryableError]. [Client] wraps
// network failures and 5xx responses that way, so a flaky console is tried
// again while a 401 or 404 fails at once:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return client.PostJSON(ctx, url, req, &resp)
//	})
//
// # Status mapping
//
//   - 2xx: success, body decoded into the target
//   - 401, 403: [ErrUnauthorized]
//   - 404: [ErrNotFound]
//   - 429: [errors.RateLimitedError] with Retry-After seconds, retryable
//   - 5xx: [ErrNetwork], retryable
//   - anything else: [ErrNetwork]
package httputil
