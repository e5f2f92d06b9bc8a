// Package services implements the catalog API client.
//
// # Client
//
// [Client] ties the pipeline together: input is classified by the query package, turned into a request target
// by the endpoint package, fetched with a bearer token and wrapped in a [results.ResultSet]. A Client is safe for
// concurrent use.
//
// Every request passes through a shared rate limiter and is bounded by the configured timeout. Successful
// bodies can be kept in an optional [ResponseCache].
//
// # Authentication
//
// [ClientCredentials] implements [TokenProvider] with the OAuth2 client-credentials grant. Tokens are cached
// until shortly before expiry and concurrent refreshes collapse into one exchange.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrMissingCredentials] : client id or secret not configured
//   - [shared.ErrInvalidArgument] : negative limit or offset, unknown entity type
//   - [shared.ErrMissingArgument] : keyword search without any terms
//   - [shared.ErrInvalidReference], [shared.ErrUnsupportedReference] : malformed or unknown resource link
//   - [shared.UpstreamError] : non-success status from the token or API endpoint
//   - [shared.ErrTimeout] : a request exceeded its deadline
//   - [shared.ErrMalformedResponse] : response body is not a JSON object
//
// Nothing is retried. A 401 drops the cached token so the next call exchanges a fresh one.
package services
