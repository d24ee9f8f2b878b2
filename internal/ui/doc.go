// Package ui implements the interactive terminal prompts and blend progress view using bubbletea's Elm architecture.
//
// A blend session moves through:
//  1. Playlist prompt ([PlaylistPromptOpts]) : pick a recent playlist, paste an ID or share link, or press enter for the most recent one
//  2. Rename confirmation ([Confirm]) : ask whether to rename the playlist "daylist" style
//  3. Theme prompt ([ThemePromptOpts]) : enter pipe-delimited themes, with tab completion from request history
//  4. [BlendModel] : monitor real-time progress updates while the engine runs
//
// Invalid input re-prompts with the validation error shown above the input line.
// Progress updates flow through a channel from the BlendEngine, providing non-blocking status reporting.
package ui
