// Package query turns free-form user input into a [Descriptor].
//
// Input without the provider domain is a keyword search and passes through verbatim. Input containing the
// domain is a resource reference: its URL path is scanned for an entity keyword in the fixed priority order
// track, playlist, album, artist, and the path segment after the keyword must be an alphanumeric identifier.
//
// Only path segments are considered, so an entity word appearing in a query parameter or fragment never
// changes the classification.
//
// A track reference may alternatively be resolved through its web page: [TitleFetcher] downloads the page,
// reads its <title> and [CleanTitle] reduces it to "Title Artist" keywords. Title resolution is best-effort;
// any failure falls back to the lookup descriptor.
package query
