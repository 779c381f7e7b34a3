package ocragent

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/couchbaselabs/go.assert"
)

func TestBuildPromptTemplates(t *testing.T) {

	assert.Equals(t, BuildPrompt(TaskMarkdown, ""), "<image>\n<|grounding|>Convert the document to markdown.")
	assert.Equals(t, BuildPrompt(TaskOcr, ""), "<image>\n<|grounding|>OCR this image.")
	assert.Equals(t, BuildPrompt(TaskFreeOcr, ""), "<image>\nFree OCR.")
	assert.Equals(t, BuildPrompt(TaskFigure, ""), "<image>\nParse the figure.")
	assert.Equals(t, BuildPrompt(TaskDescribe, ""), "<image>\nDescribe this image in detail.")
}

func TestBuildPromptCustom(t *testing.T) {

	prompt := BuildPrompt(TaskCustom, "Extract all numbers from the picture")
	assert.Equals(t, prompt, "<image>\nExtract all numbers from the picture")

	// a custom prompt that already carries the marker is used as is
	prompt = BuildPrompt(TaskCustom, "<image>\nlist the headings")
	assert.Equals(t, prompt, "<image>\nlist the headings")

	// an empty custom prompt falls back to the markdown template
	prompt = BuildPrompt(TaskCustom, "   ")
	assert.Equals(t, prompt, BuildPrompt(TaskMarkdown, ""))
}

func TestValidatePrompt(t *testing.T) {

	assert.True(t, ValidatePrompt("<image>\nFree OCR.") == nil)
	assert.True(t, ValidatePrompt("") != nil)
	assert.True(t, ValidatePrompt("no marker here") != nil)
	assert.True(t, ValidatePrompt("<image>\n"+strings.Repeat("x", 1200)) != nil)
}

func TestValidatePromptCountsRunes(t *testing.T) {

	// 500 CJK characters are 1500 bytes but well under the 1000-character
	// limit, which counts characters
	assert.True(t, ValidatePrompt("<image>\n"+strings.Repeat("字", 500)) == nil)
	assert.True(t, ValidatePrompt("<image>\n"+strings.Repeat("字", 1100)) != nil)
}

func TestParseTaskType(t *testing.T) {

	assert.Equals(t, ParseTaskType("markdown"), TaskMarkdown)
	assert.Equals(t, ParseTaskType("OCR"), TaskOcr)
	assert.Equals(t, ParseTaskType(" free "), TaskFreeOcr)
	assert.Equals(t, ParseTaskType("figure"), TaskFigure)
	assert.Equals(t, ParseTaskType("describe"), TaskDescribe)
	assert.Equals(t, ParseTaskType("custom"), TaskCustom)
	assert.Equals(t, ParseTaskType(""), TaskMarkdown)
	assert.Equals(t, ParseTaskType("bogus"), TaskMarkdown)
}

func TestTaskTypeJson(t *testing.T) {

	testJson := `{"image_base64":"foo", "task":"figure"}`
	ocrRequest := OcrRequest{}
	err := json.Unmarshal([]byte(testJson), &ocrRequest)
	assert.True(t, err == nil)
	assert.Equals(t, ocrRequest.Task, TaskFigure)

	testJson = `{"image_base64":"foo", "task":2}`
	ocrRequest = OcrRequest{}
	err = json.Unmarshal([]byte(testJson), &ocrRequest)
	assert.True(t, err == nil)
	assert.Equals(t, ocrRequest.Task, TaskFreeOcr)

	marshalled, err := json.Marshal(TaskDescribe)
	assert.True(t, err == nil)
	assert.Equals(t, string(marshalled), `"describe"`)
}

func TestAllTasksHaveDescriptions(t *testing.T) {

	tasks := AllTasks()
	assert.Equals(t, len(tasks), 6)
	for _, task := range tasks {
		description := TaskDescription(ParseTaskType(task))
		assert.True(t, description != "")
		assert.True(t, description != "unknown task type")
	}
}
