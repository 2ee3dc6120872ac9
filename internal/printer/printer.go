package printer

import (
	"github.com/slok/taskmon/internal/model"
	"github.com/slok/taskmon/internal/monitor"
)

// Printer knows how to print task information in different formats.
type Printer interface {
	PrintList(tasks []model.TaskSnapshot) error
	PrintStatus(view monitor.View) error
	PrintMessage(msg string) error
}
