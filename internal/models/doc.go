// Package models defines the data transfer objects shared by the Blendify services, tasks and formatters.
//
//   - [Playlist] : playlist metadata read from the streaming service
//   - [Track] : a generated "Artist - Song Title" string paired with its resolved URI
//   - [Blend] : the outcome of one blend run, used for publishing and dry-run exports
package models
