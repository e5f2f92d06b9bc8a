// Package ui implements an interactive terminal catalog browser using bubbletea's Elm architecture.
//
// The TUI provides a small multi-view workflow:
//  1. [SearchView] : Enter keywords or a resource link
//  2. [ResultView] : Browse the matched entities; albums and playlists open into their tracks
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Searches and lookups run as commands against a [services.Searcher], so the UI never blocks on the network.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, o, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
