// Package mapview builds the campus map overlay from stored reports.
package mapview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/greencampus/facility-reports/config"
	"github.com/greencampus/facility-reports/database/models"
)

// Kind marker category
type Kind string

const (
	KindRepair  Kind = "repair"
	KindReplace Kind = "replace"
	KindUnused  Kind = "unused"
)

// Marker one map pin
type Marker struct {
	Kind        Kind       `json:"kind"`
	EntryID     string     `json:"entryId"`
	Title       string     `json:"title"`
	Position    Point      `json:"position"`
	Items       []string   `json:"items,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Location    string     `json:"location,omitempty"`
	SpaceType   string     `json:"spaceType,omitempty"`
	Condition   string     `json:"condition,omitempty"`
	Suggestion  string     `json:"suggestion,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	SubmittedBy string     `json:"submittedBy"`
}

// Feed the overlay returned to the map page
type Feed struct {
	Center  Point        `json:"center"`
	Markers []Marker     `json:"markers"`
	Counts  map[Kind]int `json:"counts"`
}

// EntrySource scoped reads of the reports that produce markers
type EntrySource interface {
	ListResources(ctx context.Context, userID string, limit int) ([]models.ResourceEntry, error)
	ListSpaces(ctx context.Context, userID string, limit int) ([]models.SpaceEntry, error)
}

// Service 地图标记服务
type Service struct {
	source EntrySource
	center Point
}

// NewService 创建地图服务
func NewService(source EntrySource, center Point) *Service {
	return &Service{source: source, center: center}
}

// CenterFrom reads the campus centre from config
func CenterFrom(cfg *config.Config) Point {
	return Point{Lat: cfg.MapCenterLat, Lng: cfg.MapCenterLng}
}

// Markers builds the overlay from the entries the user is allowed to read
func (s *Service) Markers(ctx context.Context, userID string) (*Feed, error) {
	resources, err := s.source.ListResources(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	spaces, err := s.source.ListSpaces(ctx, userID, 0)
	if err != nil {
		return nil, err
	}

	feed := &Feed{
		Center:  s.center,
		Markers: []Marker{},
		Counts:  map[Kind]int{KindRepair: 0, KindReplace: 0, KindUnused: 0},
	}
	for i := range resources {
		feed.add(ResourceMarkers(s.center, &resources[i])...)
	}
	for i := range spaces {
		feed.add(SpaceMarker(s.center, &spaces[i]))
	}
	return feed, nil
}

func (f *Feed) add(markers ...Marker) {
	for _, m := range markers {
		f.Markers = append(f.Markers, m)
		f.Counts[m.Kind]++
	}
}

// Classify sorts an item condition into repair or replace. Anything else
// needs no marker.
func Classify(condition string) (Kind, bool) {
	c := strings.ToLower(strings.TrimSpace(condition))
	switch {
	case c == "broken" || strings.Contains(c, "beyond repair"):
		return KindReplace, true
	case c == "poor" || strings.Contains(c, "repair"):
		return KindRepair, true
	default:
		return "", false
	}
}

func itemLabel(item models.InventoryItem) string {
	name := item.Type
	if name == "" {
		name = item.Name
	}
	return fmt.Sprintf("%dx %s", item.Quantity, name)
}

// ResourceMarkers yields up to two markers for a weekly report: one
// listing items to repair and one listing items to replace
func ResourceMarkers(center Point, entry *models.ResourceEntry) []Marker {
	var repair, replace []string
	for _, group := range [][]models.InventoryItem{entry.Furniture, entry.Equipment} {
		for _, item := range group {
			kind, ok := Classify(item.Condition)
			if !ok {
				continue
			}
			if kind == KindReplace {
				replace = append(replace, itemLabel(item))
			} else {
				repair = append(repair, itemLabel(item))
			}
		}
	}

	pos := Coordinates(center, entry.Location, entry.SpecificArea)
	week := entry.WeekEnding

	var out []Marker
	if len(repair) > 0 {
		out = append(out, Marker{
			Kind:        KindRepair,
			EntryID:     entry.ID,
			Title:       "Repair Needed: " + entry.Location,
			Position:    pos,
			Items:       repair,
			Date:        &week,
			Location:    entry.Location,
			Priority:    entry.PriorityLevel,
			SubmittedBy: entry.SubmittedByName,
		})
	}
	if len(replace) > 0 {
		out = append(out, Marker{
			Kind:        KindReplace,
			EntryID:     entry.ID,
			Title:       "Replace Needed: " + entry.Location,
			Position:    pos,
			Items:       replace,
			Date:        &week,
			Location:    entry.Location,
			Priority:    entry.PriorityLevel,
			SubmittedBy: entry.SubmittedByName,
		})
	}
	return out
}

// SpaceMarker one marker per unused space survey
func SpaceMarker(center Point, entry *models.SpaceEntry) Marker {
	created := entry.CreatedAt
	return Marker{
		Kind:        KindUnused,
		EntryID:     entry.ID,
		Title:       "Unused Space: " + entry.BuildingName,
		Position:    Coordinates(center, entry.BuildingName, entry.FloorNumber+" - "+entry.SpecificLocation),
		Date:        &created,
		Location:    fmt.Sprintf("Floor %s, %s", entry.FloorNumber, entry.SpecificLocation),
		SpaceType:   entry.SpaceType,
		Condition:   entry.SpaceCondition,
		Suggestion:  entry.SuggestionDetails,
		Priority:    entry.Priority,
		SubmittedBy: entry.SubmittedByName,
	}
}
