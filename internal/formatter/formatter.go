// package formatter renders blend results to various formats (CSV, JSON, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/desertthunder/blendify/internal/models"
	"github.com/desertthunder/blendify/internal/shared"
)

// Format names an output format for a blend.
type Format string

const (
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a format name. "md" and "text" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: format %q (must be txt, json, csv or markdown)", shared.ErrInvalidArgument, s)
	}
}

// Extension returns the file extension used when writing f to disk.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatJSON:
		return ".json"
	case FormatCSV:
		return ".csv"
	default:
		return ".txt"
	}
}

// Render converts a blend to the given format.
func Render(blend *models.Blend, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return ExportToJSON(blend)
	case FormatCSV:
		return ExportToCSV(blend)
	case FormatMarkdown:
		return ExportToMarkdown(blend)
	case FormatText, "":
		return ExportToText(blend)
	default:
		return nil, fmt.Errorf("%w: format %q", shared.ErrInvalidArgument, f)
	}
}

// ExportToCSV converts a blend to CSV format with columns: Position, Artist, Title, URI, Song
func ExportToCSV(blend *models.Blend) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Artist", "Title", "URI", "Song"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, track := range blend.Tracks {
		record := []string{
			strconv.Itoa(i + 1),
			track.Artist,
			track.Title,
			track.URI,
			track.Song,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a blend to Markdown with a tracks section and, when present, the dropped songs.
func ExportToMarkdown(blend *models.Blend) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title(blend))

	if blend.Name != "" {
		fmt.Fprintf(&buf, "**Themes**: %s\n", blend.Query)
	}
	if blend.PlaylistID != "" {
		fmt.Fprintf(&buf, "**Playlist**: %s\n", blend.PlaylistID)
	}
	fmt.Fprintf(&buf, "**Tracks**: %d\n", len(blend.Tracks))
	fmt.Fprintf(&buf, "**Dropped**: %d\n\n", len(blend.Dropped))

	buf.WriteString("## Tracks\n\n")
	for i, track := range blend.Tracks {
		fmt.Fprintf(&buf, "%d. %s `%s`\n", i+1, display(track), track.URI)
	}

	if len(blend.Dropped) > 0 {
		buf.WriteString("\n## Dropped\n\n")
		for _, song := range blend.Dropped {
			fmt.Fprintf(&buf, "- %s\n", song)
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a blend to plain text format
func ExportToText(blend *models.Blend) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Blend: %s\n", title(blend))
	if blend.PlaylistID != "" {
		fmt.Fprintf(&buf, "Playlist: %s\n", blend.PlaylistID)
	}
	fmt.Fprintf(&buf, "Tracks: %d\n", len(blend.Tracks))
	if len(blend.Dropped) > 0 {
		fmt.Fprintf(&buf, "Dropped: %d\n", len(blend.Dropped))
	}
	buf.WriteString("\n")

	for i, track := range blend.Tracks {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, display(track))
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders the full blend, including songs that were sampled but not resolved.
func ExportToJSON(blend *models.Blend) ([]byte, error) {
	return shared.MarshalJSON(blend, true)
}

// WriteExport renders a blend and writes it to path.
//
// Defaults to {blend.ID}{ext} in the working directory.
func WriteExport(blend *models.Blend, f Format, path string) (string, error) {
	if path == "" {
		path = blend.ID + f.Extension()
	}

	data, err := Render(blend, f)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", f, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", f, err)
	}

	return path, nil
}

func title(blend *models.Blend) string {
	if blend.Name != "" {
		return blend.Name
	}
	return blend.Query
}

func display(track models.Track) string {
	if track.Artist == "" {
		return track.Title
	}
	return track.Artist + models.SongSeparator + track.Title
}
