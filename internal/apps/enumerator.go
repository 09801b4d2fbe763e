// Package apps enumerates launchable application candidates from
// .desktop files and resolves them into collection entries.
package apps

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Candidate is a raw, unprocessed launchable descriptor: an identity and
// the file that backs it. The label guess comes from the file name and is
// replaced during metadata resolution.
type Candidate struct {
	Identity string
	RawLabel string
	Path     string
}

// DefaultScanDirs returns the standard XDG application directories.
func DefaultScanDirs() []string {
	return []string{
		filepath.Join(os.Getenv("HOME"), ".local", "share", "applications"),
		"/usr/share/applications",
		"/usr/local/share/applications",
	}
}

// IdentityForPath derives the candidate identity from a .desktop file
// path: the file name without the extension, which by convention is a
// reverse-DNS application id.
func IdentityForPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".desktop")
}

// Enumerate walks dirs and returns one candidate per .desktop file found.
// Traversal order carries no guarantee; unreadable directories are
// skipped. Identities seen in an earlier directory shadow later ones.
func Enumerate(dirs []string) []Candidate {
	if len(dirs) == 0 {
		dirs = DefaultScanDirs()
	}

	var candidates []Candidate
	seen := make(map[string]bool)

	for _, dir := range dirs {
		_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() || !strings.HasSuffix(path, ".desktop") {
				return nil
			}

			identity := IdentityForPath(path)
			if seen[identity] {
				return nil
			}
			seen[identity] = true

			candidates = append(candidates, Candidate{
				Identity: identity,
				RawLabel: identity,
				Path:     path,
			})
			return nil
		})
	}

	return candidates
}

// desktopEntry is the parsed subset of a .desktop file.
type desktopEntry struct {
	Name      string
	Exec      string
	Icon      string
	NoDisplay bool
}

// parseDesktopFile reads the key=value pairs this launcher cares about.
func parseDesktopFile(path string) (desktopEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return desktopEntry{}, err
	}
	defer file.Close()

	var entry desktopEntry
	inDesktopSection := true

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			// Only the main section describes the launchable itself;
			// [Desktop Action ...] sections repeat the same keys.
			inDesktopSection = line == "[Desktop Entry]"
			continue
		}
		if !inDesktopSection || !strings.Contains(line, "=") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), "\"")

		switch key {
		case "Name":
			if entry.Name == "" {
				entry.Name = value
			}
		case "Exec":
			if entry.Exec == "" {
				entry.Exec = value
			}
		case "Icon":
			if entry.Icon == "" {
				entry.Icon = value
			}
		case "Type":
			if value != "Application" {
				entry.NoDisplay = true
			}
		case "NoDisplay", "Hidden":
			if strings.EqualFold(value, "true") {
				entry.NoDisplay = true
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return desktopEntry{}, err
	}

	if entry.Name == "" || entry.Exec == "" {
		return desktopEntry{}, fmt.Errorf("invalid desktop file: missing Name or Exec")
	}
	return entry, nil
}

// stripFieldCodes removes %f/%u style placeholders from an Exec line.
func stripFieldCodes(exec string) string {
	fields := strings.Fields(exec)
	kept := fields[:0]
	for _, f := range fields {
		if len(f) == 2 && f[0] == '%' {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}
