package ocragent

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

type TaskType int

const (
	TaskMarkdown = TaskType(iota)
	TaskOcr
	TaskFreeOcr
	TaskFigure
	TaskDescribe
	TaskCustom
)

// Prompt templates per task. The strings are fixed by the model card; the
// <|grounding|> marker asks the model to emit bounding boxes.
var promptTemplates = map[TaskType]string{
	TaskMarkdown: "<image>\n<|grounding|>Convert the document to markdown.",
	TaskOcr:      "<image>\n<|grounding|>OCR this image.",
	TaskFreeOcr:  "<image>\nFree OCR.",
	TaskFigure:   "<image>\nParse the figure.",
	TaskDescribe: "<image>\nDescribe this image in detail.",
}

var taskDescriptions = map[TaskType]string{
	TaskMarkdown: "Convert document content to markdown, keeping structure and layout",
	TaskOcr:      "Recognize all text in the image, with positions",
	TaskFreeOcr:  "Extract plain text only, ignoring layout",
	TaskFigure:   "Parse charts, figures and diagrams",
	TaskDescribe: "Generate a detailed description of the image",
	TaskCustom:   "Use a custom recognition instruction",
}

func (t TaskType) String() string {
	switch t {
	case TaskMarkdown:
		return "markdown"
	case TaskOcr:
		return "ocr"
	case TaskFreeOcr:
		return "free"
	case TaskFigure:
		return "figure"
	case TaskDescribe:
		return "describe"
	case TaskCustom:
		return "custom"
	}
	return ""
}

// ParseTaskType maps a task name to its type. Unknown names fall back to the
// markdown task, the same default the UI preselects.
func ParseTaskType(taskStr string) TaskType {
	switch strings.ToLower(strings.TrimSpace(taskStr)) {
	case "markdown", "":
		return TaskMarkdown
	case "ocr":
		return TaskOcr
	case "free":
		return TaskFreeOcr
	case "figure":
		return TaskFigure
	case "describe":
		return TaskDescribe
	case "custom":
		return TaskCustom
	default:
		log.Warn().Str("component", "OCR_PROMPT").Str("task", taskStr).
			Msg("unexpected task type, falling back to markdown")
		return TaskMarkdown
	}
}

func (t *TaskType) UnmarshalJSON(b []byte) (err error) {

	var taskTypeStr string
	if err := json.Unmarshal(b, &taskTypeStr); err == nil {
		*t = ParseTaskType(taskTypeStr)
		return nil
	}

	// not a string .. maybe it's an int

	var taskTypeInt int
	if err := json.Unmarshal(b, &taskTypeInt); err == nil {
		*t = TaskType(taskTypeInt)
		return nil
	} else {
		return err
	}

}

func (t TaskType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// BuildPrompt returns the full prompt string for a task. For the custom task
// the user text is used, with the <image> marker prepended when missing; an
// empty custom prompt falls back to the markdown template.
func BuildPrompt(task TaskType, customPrompt string) string {
	if task == TaskCustom {
		trimmed := strings.TrimSpace(customPrompt)
		if trimmed == "" {
			log.Warn().Str("component", "OCR_PROMPT").
				Msg("custom prompt is empty, using the markdown template")
			return promptTemplates[TaskMarkdown]
		}
		if !strings.Contains(trimmed, "<image>") {
			return fmt.Sprintf("<image>\n%s", trimmed)
		}
		return trimmed
	}

	prompt, ok := promptTemplates[task]
	if !ok {
		log.Warn().Str("component", "OCR_PROMPT").Str("task", task.String()).
			Msg("no template for task, using the markdown template")
		return promptTemplates[TaskMarkdown]
	}
	return prompt
}

const maxPromptLength = 1000

// ValidatePrompt rejects prompts the runtime would choke on.
func ValidatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("prompt must not be empty")
	}
	if !strings.Contains(prompt, "<image>") {
		return fmt.Errorf("prompt must contain the <image> marker")
	}
	if utf8.RuneCountInString(prompt) > maxPromptLength {
		return fmt.Errorf("prompt longer than %d characters", maxPromptLength)
	}
	return nil
}

// TaskDescription returns the human readable description shown in the UI.
func TaskDescription(task TaskType) string {
	if description, ok := taskDescriptions[task]; ok {
		return description
	}
	return "unknown task type"
}

// AllTasks lists every supported task name for the UI and the API.
func AllTasks() []string {
	return []string{
		TaskMarkdown.String(),
		TaskOcr.String(),
		TaskFreeOcr.String(),
		TaskFigure.String(),
		TaskDescribe.String(),
		TaskCustom.String(),
	}
}
