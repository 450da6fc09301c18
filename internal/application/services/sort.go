package services

import (
	"sort"

	"github.com/tasklight/core/internal/domain/entities"
)

// sortTasks orders a snapshot in place. Both orders are stable so tasks that
// compare equal keep their insertion order.
func sortTasks(tasks []*entities.Task, order entities.SortOrder) {
	switch order {
	case entities.SortDueDate:
		sort.SliceStable(tasks, func(i, j int) bool {
			a, b := tasks[i].DueDate, tasks[j].DueDate
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			default:
				return a.Before(*b)
			}
		})
	default:
		sort.SliceStable(tasks, func(i, j int) bool {
			if tasks[i].Completed != tasks[j].Completed {
				return !tasks[i].Completed
			}
			return tasks[i].ID < tasks[j].ID
		})
	}
}
