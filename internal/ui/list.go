package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/amjp/internal/models"
	"github.com/desertthunder/amjp/internal/tasks"
)

var (
	_ list.Item = resultItem{}
)

// resultItem wraps [tasks.TrackResult] to implement [list.Item].
type resultItem struct {
	result tasks.TrackResult
}

func (i resultItem) FilterValue() string { return i.result.Track.Name + " " + i.result.Track.Artist }

func (i resultItem) Title() string {
	if l := i.result.Localized; l != nil && i.result.Outcome != models.OutcomeNoMatch {
		return fmt.Sprintf("%s → %s", i.result.Track.Name, l.Title)
	}
	return i.result.Track.Name
}

func (i resultItem) Description() string {
	desc := fmt.Sprintf("%s • %s", styles.outcome(i.result.Outcome).Render(string(i.result.Outcome)), i.result.Track.Artist)
	switch {
	case i.result.Error != nil:
		desc = fmt.Sprintf("%s • %v", desc, i.result.Error)
	case i.result.Outcome == models.OutcomeFailed && i.result.Response != "":
		desc = fmt.Sprintf("%s • %s", desc, i.result.Response)
	case i.result.Localized != nil:
		desc = fmt.Sprintf("%s • %s", desc, i.result.Localized.Album)
	}
	return desc
}

// resultItems lists every looked-up track. Ledger skips and in-run duplicates are counted in the summary only.
func resultItems(results []tasks.TrackResult) []list.Item {
	items := make([]list.Item, 0, len(results))
	for _, r := range results {
		if r.Outcome == models.OutcomeSkipped || r.Outcome == models.OutcomeDuplicate {
			continue
		}
		items = append(items, resultItem{result: r})
	}
	return items
}
