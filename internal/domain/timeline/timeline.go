// Package timeline turns the history rows of a Lead or Opportunity into the
// merged activity feed shown on the record page.
package timeline

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rtCamp/next-crm/internal/domain/models"
	"github.com/rtCamp/next-crm/pkg/constants"
	"github.com/rtCamp/next-crm/pkg/utils"
)

type versionData struct {
	Changed [][]interface{} `json:"changed"`
}

// IsFieldChange reports whether an activity type is produced from a Version
func IsFieldChange(activityType string) bool {
	switch activityType {
	case constants.ActivityChanged, constants.ActivityAdded, constants.ActivityRemoved:
		return true
	}
	return false
}

// FieldChange converts the first change of a version into an activity.
// ok is false when the version carries nothing worth showing.
func FieldChange(v models.Version, fields map[string]models.DocField, avoid map[string]bool, isLead bool) (models.Activity, bool) {
	var data versionData
	if err := json.Unmarshal([]byte(v.Data), &data); err != nil || len(data.Changed) == 0 {
		return models.Activity{}, false
	}

	change := data.Changed[0]
	if len(change) < 3 {
		return models.Activity{}, false
	}
	fieldname := fmt.Sprint(change[0])
	oldValue, newValue := change[1], change[2]

	field, known := fields[fieldname]
	if !known || avoid[fieldname] || (utils.IsBlank(oldValue) && utils.IsBlank(newValue)) {
		return models.Activity{}, false
	}

	label := field.Label
	if label == "" {
		label = fieldname
	}

	activity := models.Activity{
		ActivityType: constants.ActivityChanged,
		Creation:     v.Creation,
		Owner:        v.Owner,
		IsLead:       isLead,
		Options:      field.Options,
	}

	switch {
	case utils.IsBlank(oldValue):
		activity.ActivityType = constants.ActivityAdded
		activity.Data = models.FieldChangeData{Field: fieldname, FieldLabel: label, Value: newValue}
	case utils.IsBlank(newValue):
		activity.ActivityType = constants.ActivityRemoved
		activity.Data = models.FieldChangeData{Field: fieldname, FieldLabel: label, Value: oldValue}
	default:
		activity.Data = models.FieldChangeData{Field: fieldname, FieldLabel: label, OldValue: oldValue, Value: newValue}
	}

	return activity, true
}

// SortDescending orders activities newest first; ties keep insertion order.
func SortDescending(activities []models.Activity) {
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Creation.After(activities[j].Creation)
	})
}

// GroupVersions collapses every run of consecutive field changes made by the
// same (non-empty) owner into the run's first entry. The remaining changes of
// the run are attached as OtherVersions. Order is otherwise preserved.
func GroupVersions(activities []models.Activity) []models.Activity {
	out := make([]models.Activity, 0, len(activities))
	head := -1

	for _, a := range activities {
		if !IsFieldChange(a.ActivityType) {
			out = append(out, a)
			head = -1
			continue
		}
		if head >= 0 && a.Owner != "" && out[head].Owner == a.Owner {
			out[head].OtherVersions = append(out[head].OtherVersions, a)
			continue
		}
		out = append(out, a)
		head = len(out) - 1
	}

	return out
}

// Merge sorts activities newest first and groups consecutive changes
func Merge(activities []models.Activity) []models.Activity {
	SortDescending(activities)
	return GroupVersions(activities)
}

// BuildNoteTree nests replies under their parent note. notes must be ordered
// by added_on descending; replies end up oldest first, roots newest first.
// It also returns the filenames of every attachment seen.
func BuildNoteTree(notes []models.Note, attachments []models.NoteAttachment) ([]*models.Note, []string) {
	roots := make([]*models.Note, 0)
	if len(notes) == 0 {
		return roots, []string{}
	}

	byName := make(map[string]*models.Note, len(notes))
	for i := range notes {
		n := notes[i]
		n.NoteReplies = make([]*models.Note, 0)
		n.Attachments = make([]models.NoteAttachment, 0)
		byName[strings.TrimSpace(n.Name)] = &n
	}

	fileNames := make([]string, 0, len(attachments))
	for _, a := range attachments {
		fileNames = append(fileNames, a.Filename)
		if parent, ok := byName[strings.TrimSpace(a.Parent)]; ok {
			parent.Attachments = append(parent.Attachments, a)
		}
	}

	for _, n := range notes {
		id := strings.TrimSpace(n.Name)
		parentID := strings.TrimSpace(n.CustomParentNote)
		node := byName[id]

		if parent, ok := byName[parentID]; ok && parentID != "" && parentID != id {
			parent.NoteReplies = append([]*models.Note{node}, parent.NoteReplies...)
			continue
		}
		roots = append(roots, node)
	}

	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i].AddedOn.After(roots[j].AddedOn)
	})

	return roots, fileNames
}
