// Package models defines the domain entities produced from catalog responses.
//
// Entities compose rather than inherit:
//   - [Base] : fields shared by every entity, including the raw JSON fragment it was built from
//   - [TrackBase] : [Base] plus playback fields shared by tracks and episodes
//   - [Track] : a song, owning its [Artist] list and its [Album]
//   - [Album], [Artist], [Episode], [Playlist] : the remaining catalog kinds
//   - [Cover] : an image reference
//
// The graph only points downward (track to album to artists). An album never refers back to its tracks,
// so any entity can be marshaled or walked without cycle detection.
//
// Entities are built once by the mapper package and are not modified afterwards. Slices are never
// shared between two entities, even when they came from identical fragments.
package models
