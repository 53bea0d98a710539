package views

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sandeepkv93/remindme/internal/model"
)

const (
	DateLayout  = "02.01 15:04"
	ClockLayout = "15:04"

	maxLabelRunes = 25
	cutLabelRunes = 22
)

// Main keyboard labels. Incoming text equal to one of them is a menu action
// rather than a new task.
const (
	ButtonShowTasks  = "Show tasks"
	ButtonDeleteTask = "Delete task"
	ButtonMarkDone   = "Mark done"
	ButtonArchive    = "Archive"
)

// MainMenu is the reply keyboard layout, row by row.
var MainMenu = [][]string{
	{ButtonShowTasks, ButtonDeleteTask},
	{ButtonMarkDone, ButtonArchive},
}

const (
	UnknownCommand    = "Unknown command. Just send me the task text."
	TaskNotFound      = "Task not found. It may have been deleted."
	TaskAlreadyDone   = "This task is already done and can no longer be edited."
	NoDeadline        = "This task has no deadline, so a reminder is impossible."
	GenericFailure    = "Something went wrong. Please try again."
	NoTasks           = "You have no tasks yet 🙂\nJust send me anything and I will save it as a task."
	EmptyArchive      = "The task archive is empty 🙂"
	NothingToDelete   = "Nothing to delete, the task list is empty 🙂"
	NothingToComplete = "There are no active tasks to mark as done 🙂"
	PickDelete        = "Choose the task you want to delete:"
	PickComplete      = "Choose the task you want to mark as done:"
	PickEdit          = "Choose the task you want to edit:"
	ReminderDone      = "Task marked as done ✅"
	EditCancelled     = "Editing cancelled."
	ButtonDone        = "Done ✅"
	ButtonSnooze      = "Snooze ⏰"
	ButtonBack        = "↩️ Back"
	ButtonEdit        = "✏️ Edit"
	ButtonCancel      = "Cancel"

	tasksTitle   = "Your tasks"
	archiveTitle = "Completed tasks"
	digestTitle  = "Morning digest of tasks for today"
)

func Greeting(name string) string {
	if strings.TrimSpace(name) == "" {
		name = "there"
	}
	return fmt.Sprintf("Hi, %s!\n\n"+
		"I am your quick task bot.\n\n"+
		"Just send me any phrase, for example:\n"+
		"→ \"Prepare for the exam tomorrow at 18:00\"\n\n"+
		"I will save the task and set a reminder.\n\n"+
		"Buttons below:\n"+
		"• \"%s\" to see the list\n"+
		"• \"%s\" to remove one with buttons", name, ButtonShowTasks, ButtonDeleteTask)
}

// TaskList renders tasks split into deadline and no-deadline sections,
// numbered within each section. Deadlines are shown in loc.
func TaskList(title string, tasks []model.Task, loc *time.Location) string {
	if len(tasks) == 0 {
		return title + ":\n\n(empty so far)"
	}
	withDeadline := make([]string, 0, len(tasks))
	without := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if t.DueAt != nil {
			withDeadline = append(withDeadline, taskLine(t, loc))
			continue
		}
		without = append(without, t.Text)
	}

	parts := []string{title + ":\n"}
	if len(withDeadline) > 0 {
		parts = append(parts, "🕒 With deadline:\n"+numbered(withDeadline)+"\n")
	}
	if len(without) > 0 {
		parts = append(parts, "📝 No deadline:\n"+numbered(without))
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func ActiveTasks(tasks []model.Task, loc *time.Location) string {
	if len(tasks) == 0 {
		return NoTasks
	}
	return TaskList(tasksTitle, tasks, loc)
}

func Archive(tasks []model.Task, loc *time.Location) string {
	if len(tasks) == 0 {
		return EmptyArchive
	}
	return TaskList(archiveTitle, tasks, loc)
}

func Digest(tasks []model.Task, loc *time.Location) string {
	return TaskList(digestTitle, tasks, loc)
}

func Reminder(text string) string {
	if strings.TrimSpace(text) == "" {
		text = "task"
	}
	return "⏰ Reminder:\n\n" + text
}

func TaskSaved(task model.Task, loc *time.Location) string {
	if task.DueAt == nil {
		return "Task saved ✅"
	}
	return fmt.Sprintf("Task saved ✅ (due %s)\nChoose when to remind you:", task.DueAt.In(loc).Format(DateLayout))
}

func TaskEdited(task model.Task, loc *time.Location) string {
	if task.DueAt == nil {
		return fmt.Sprintf("Task updated ✅\n%s", task.Text)
	}
	return fmt.Sprintf("Task updated ✅\n%s", taskLine(task, loc))
}

func EditPrompt(task model.Task) string {
	return fmt.Sprintf("Send the new text for \"%s\".\nMention a date or time to move the deadline.", task.Text)
}

// RemindAtConfirmation confirms the reminder armed for mode at the given
// clock time.
func RemindAtConfirmation(mode model.ReminderMode, at time.Time) string {
	if mode == model.ReminderModeExact {
		return fmt.Sprintf("The reminder will arrive at the deadline: %s ⏰", at.Format(ClockLayout))
	}
	return fmt.Sprintf("The reminder will be sent at %s ⏰", at.Format(ClockLayout))
}

func Snoozed(minutes int, next time.Time) string {
	return fmt.Sprintf("Reminder snoozed by %d minutes ⏰\nNext reminder: %s", minutes, next.Format(ClockLayout))
}

func SnoozeLabel(minutes int) string {
	if minutes%60 == 0 {
		hours := minutes / 60
		if hours == 1 {
			return "For 1 hour"
		}
		return fmt.Sprintf("For %d hours", hours)
	}
	return fmt.Sprintf("For %d minutes", minutes)
}

func AfterDelete(remaining []model.Task, loc *time.Location) string {
	if len(remaining) == 0 {
		return "Task deleted ✅\n\nThe task list is now empty."
	}
	return "Task deleted ✅\n\nCurrent tasks:\n\n" + flatList(remaining, loc)
}

func AfterComplete(remaining []model.Task, loc *time.Location) string {
	if len(remaining) == 0 {
		return "Task marked as done ✅\n\nNo active tasks left."
	}
	return "Task marked as done ✅\n\nCurrent active tasks:\n\n" + flatList(remaining, loc)
}

// PickerLabel shortens text for a picker button: anything longer than 25
// characters keeps its first 22 followed by "...".
func PickerLabel(text string) string {
	if utf8.RuneCountInString(text) <= maxLabelRunes {
		return text
	}
	return string([]rune(text)[:cutLabelRunes]) + "..."
}

// IsMenuButton reports whether text is one of the main keyboard labels.
func IsMenuButton(text string) bool {
	for _, row := range MainMenu {
		for _, label := range row {
			if text == label {
				return true
			}
		}
	}
	return false
}

func taskLine(t model.Task, loc *time.Location) string {
	if t.DueAt == nil {
		return t.Text
	}
	return fmt.Sprintf("%s (due %s)", t.Text, t.DueAt.In(loc).Format(DateLayout))
}

func flatList(tasks []model.Task, loc *time.Location) string {
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		lines = append(lines, taskLine(t, loc))
	}
	return numbered(lines)
}

func numbered(lines []string) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, line)
	}
	return b.String()
}
