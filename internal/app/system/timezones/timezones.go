// Package timezones holds the curated zone list offered to users when they
// set their profile time zone. Any IANA zone is accepted on update; this
// list only drives the picker.
package timezones

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

//go:embed zonedata/zones.json
var fs embed.FS

// Zone is one picker entry.
type Zone struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Region string `json:"region,omitempty"`
}

// ZoneGroup is the zones of one region, sorted by label.
type ZoneGroup struct {
	Region string     `json:"region"`
	Zones  []ZoneInfo `json:"zones"`
}

// ZoneInfo is a Zone with its UTC offset at a given instant.
type ZoneInfo struct {
	Zone
	Offset string `json:"offset"` // e.g. "UTC-05:00"
}

var (
	loadOnce sync.Once
	zones    []Zone
	byID     map[string]Zone
	loadErr  error
)

func load() {
	loadOnce.Do(func() {
		data, err := fs.ReadFile("zonedata/zones.json")
		if err != nil {
			loadErr = err
			return
		}
		var list []Zone
		if err := json.Unmarshal(data, &list); err != nil {
			loadErr = fmt.Errorf("zones.json: %w", err)
			return
		}
		idx := make(map[string]Zone, len(list))
		for _, z := range list {
			if _, err := time.LoadLocation(z.ID); err != nil {
				loadErr = fmt.Errorf("zones.json: %q: %w", z.ID, err)
				return
			}
			idx[z.ID] = z
		}
		zones, byID = list, idx
	})
}

// Load parses the embedded list. Startup calls it to fail fast.
func Load() error {
	load()
	return loadErr
}

// All returns the curated zones in file order.
func All() ([]Zone, error) {
	if err := Load(); err != nil {
		return nil, err
	}
	return zones, nil
}

// Label returns the display label for id, or id itself when it is not in
// the curated list.
func Label(id string) string {
	if Load() != nil {
		return id
	}
	if z, ok := byID[id]; ok && z.Label != "" {
		return z.Label
	}
	return id
}

// Curated reports whether id is in the list.
func Curated(id string) bool {
	if Load() != nil {
		return false
	}
	_, ok := byID[id]
	return ok
}

// Groups returns the zones grouped by region with their offsets at now.
// Regions sort by name with "Other" last.
func Groups(now time.Time) ([]ZoneGroup, error) {
	if err := Load(); err != nil {
		return nil, err
	}

	byRegion := make(map[string][]ZoneInfo)
	for _, z := range zones {
		region := z.Region
		if region == "" {
			region = "Other"
		}
		byRegion[region] = append(byRegion[region], ZoneInfo{Zone: z, Offset: Offset(z.ID, now)})
	}

	out := make([]ZoneGroup, 0, len(byRegion))
	for region, zs := range byRegion {
		sort.SliceStable(zs, func(i, j int) bool { return zs[i].Label < zs[j].Label })
		out = append(out, ZoneGroup{Region: region, Zones: zs})
	}
	sort.Slice(out, func(i, j int) bool {
		if (out[i].Region == "Other") != (out[j].Region == "Other") {
			return out[j].Region == "Other"
		}
		return out[i].Region < out[j].Region
	})
	return out, nil
}

// Offset formats id's UTC offset at now as UTC±hh:mm. Unknown zones
// report UTC.
func Offset(id string, now time.Time) string {
	loc, err := time.LoadLocation(id)
	if err != nil {
		loc = time.UTC
	}
	_, secs := now.In(loc).Zone()
	sign := '+'
	if secs < 0 {
		sign = '-'
		secs = -secs
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, secs/3600, (secs%3600)/60)
}
