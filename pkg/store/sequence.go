package store

import "github.com/matt-steen/taskboard/pkg/models"

func columnIDs(tasks []models.Task) []string {
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}

	return ids
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}

	return -1
}

// arrayMove returns a copy of ids with the element at from moved to index to.
func arrayMove(ids []string, from, to int) []string {
	out := append([]string{}, ids...)
	moved := out[from]
	out = append(out[:from], out[from+1:]...)

	return insertAt(out, moved, to)
}

// insertAt returns a copy of ids with id inserted before index at (clamped to the ends).
func insertAt(ids []string, id string, at int) []string {
	if at < 0 {
		at = 0
	}

	if at > len(ids) {
		at = len(ids)
	}

	out := make([]string, 0, len(ids)+1)
	out = append(out, ids[:at]...)
	out = append(out, id)
	out = append(out, ids[at:]...)

	return out
}
