package chat

import (
	"github.com/sandeepkv93/remindme/internal/commands"
	"github.com/sandeepkv93/remindme/internal/model"
	"github.com/sandeepkv93/remindme/internal/views"
)

// OffsetChoices offers when to remind about a task that has a deadline.
func OffsetChoices(taskID int64) [][]commands.Choice {
	modes := model.ReminderModes()
	rows := make([][]commands.Choice, 0, 3)
	row := make([]commands.Choice, 0, 2)
	for _, mode := range modes {
		c := commands.Choice{Label: mode.Label(), Command: commands.PickOffset(taskID, mode)}
		if mode == model.ReminderModeExact {
			rows = append(rows, []commands.Choice{c})
			continue
		}
		row = append(row, c)
		if len(row) == 2 {
			rows = append(rows, row)
			row = make([]commands.Choice, 0, 2)
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

func ReminderChoices(taskID int64) [][]commands.Choice {
	return [][]commands.Choice{
		{
			{Label: views.ButtonDone, Command: commands.CompleteTask(taskID)},
			{Label: views.ButtonSnooze, Command: commands.SnoozeMenu(taskID)},
		},
		{
			{Label: views.ButtonEdit, Command: commands.EditTask(taskID)},
		},
	}
}

func SnoozeChoices(taskID int64) [][]commands.Choice {
	rows := make([][]commands.Choice, 0, len(model.SnoozeChoices)+1)
	for _, minutes := range model.SnoozeChoices {
		rows = append(rows, []commands.Choice{{Label: views.SnoozeLabel(minutes), Command: commands.Snooze(taskID, minutes)}})
	}
	return append(rows, []commands.Choice{{Label: views.ButtonBack, Command: commands.ReminderMenu(taskID)}})
}

// PickerChoices puts one task per row, labelled with marker and the
// shortened task text.
func PickerChoices(tasks []model.Task, marker string, build func(int64) commands.Command) [][]commands.Choice {
	rows := make([][]commands.Choice, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []commands.Choice{{Label: marker + views.PickerLabel(t.Text), Command: build(t.ID)}})
	}
	return rows
}
