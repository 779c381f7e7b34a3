package ocragent

import (
	"encoding/base64"
	"html/template"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// WebUIHandler serves the browser front-end: an upload form on GET, the full
// pipeline plus rendered results on POST. It shares HandleOcrRequest with the
// API daemon, only the presentation differs.
type WebUIHandler struct {
	ModelClient *ModelClient
	AppConfig   *AppConfig
	tmpl        *template.Template
}

func NewWebUIHandler(modelClient *ModelClient, appConfig *AppConfig) (*WebUIHandler, error) {
	tmpl, err := template.New("webui").Parse(webUIPage)
	if err != nil {
		return nil, err
	}
	return &WebUIHandler{
		ModelClient: modelClient,
		AppConfig:   appConfig,
		tmpl:        tmpl,
	}, nil
}

type webUITask struct {
	Name        string
	Description string
}

type webUIView struct {
	Tasks         []webUITask
	Resolutions   []string
	Error         string
	Result        *OcrResult
	InlineImage   string
	TextFileName  string
	ImageFileName string
}

func (s *WebUIHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path != "/" {
		http.NotFound(w, req)
		return
	}

	view := webUIView{
		Resolutions: AllResolutionModes(),
	}
	for _, task := range AllTasks() {
		view.Tasks = append(view.Tasks, webUITask{
			Name:        task,
			Description: TaskDescription(ParseTaskType(task)),
		})
	}

	if req.Method == http.MethodPost {
		s.handleSubmit(req, &view)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, view); err != nil {
		log.Error().Err(err).Str("component", "OCR_WEBUI").Msg("template render failed")
	}
}

func (s *WebUIHandler) handleSubmit(req *http.Request, view *webUIView) {
	req.Body = http.MaxBytesReader(nil, req.Body, MaxImageBytes+1024*1024)

	ocrRequest, err := ExtractOcrRequest(req)
	if err != nil {
		view.Error = err.Error()
		return
	}

	ocrResult, _, err := HandleOcrRequest(req.Context(), &ocrRequest, s.ModelClient, s.AppConfig)
	if err != nil {
		view.Error = err.Error()
		return
	}

	view.Result = &ocrResult
	if ocrResult.TextFile != "" {
		view.TextFileName = filepath.Base(ocrResult.TextFile)
	}
	if ocrResult.VisualizationFile != "" {
		view.ImageFileName = filepath.Base(ocrResult.VisualizationFile)
		if raw, err := os.ReadFile(ocrResult.VisualizationFile); err == nil {
			view.InlineImage = base64.StdEncoding.EncodeToString(raw)
		}
	}
}

const webUIPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>ocr-agent</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 0 auto; padding: 1em; color: #2c3e50; }
h1 { text-align: center; }
form, .results { border: 1px solid #ccc; border-radius: 5px; padding: 1em; margin-bottom: 1em; }
label { display: block; margin-top: 0.8em; font-weight: bold; }
pre { background: #f8f9fa; padding: 10px; border-radius: 5px; white-space: pre-wrap; }
img.viz { max-width: 100%; }
.error { color: #c0392b; font-weight: bold; }
.status { background: #f8f9fa; border-radius: 5px; padding: 10px; }
button { margin-top: 1em; padding: 8px 16px; }
small { font-weight: normal; color: #666; }
</style>
</head>
<body>
<h1>ocr-agent</h1>
<form method="post" enctype="multipart/form-data">
  <label>Image
    <input type="file" name="image" accept="image/png,image/jpeg,image/webp,image/gif" required>
  </label>
  <label>Task</label>
  {{range .Tasks}}
  <div>
    <input type="radio" name="task" value="{{.Name}}" id="task-{{.Name}}" {{if eq .Name "markdown"}}checked{{end}}>
    <label for="task-{{.Name}}" style="display:inline;font-weight:normal">{{.Name}} <small>{{.Description}}</small></label>
  </div>
  {{end}}
  <label>Custom prompt <small>used only with the custom task</small>
    <input type="text" name="custom_prompt" placeholder="e.g. Extract all numbers from the picture" style="width:100%">
  </label>
  <label>Resolution mode
    <select name="resolution_mode">
      {{range .Resolutions}}<option value="{{.}}" {{if eq . "Base (1024×1024) - recommended"}}selected{{end}}>{{.}}</option>{{end}}
    </select>
  </label>
  <label>Preprocessor
    <select name="preprocessor">
      <option value="identity" selected>identity</option>
      <option value="enhance">enhance (sharpen low-contrast scans)</option>
    </select>
  </label>
  <label style="font-weight:normal">
    <input type="checkbox" name="save_visualization" value="true" checked>
    Save visualization (bounding box annotations)
  </label>
  <button type="submit">Recognize</button>
</form>

{{if .Error}}<div class="results"><p class="error">{{.Error}}</p></div>{{end}}

{{if .Result}}
<div class="results">
  <h2>Result</h2>
  <pre>{{.Result.Text}}</pre>
  {{if .InlineImage}}
  <h3>Visualization</h3>
  <img class="viz" src="data:image/jpeg;base64,{{.InlineImage}}" alt="bounding box visualization">
  {{end}}
  <div class="status">
    <p>Inference time: {{printf "%.2f" .Result.InferenceTime}}s &middot;
       Tokens: {{.Result.NumTokens}} &middot;
       Bounding boxes: {{.Result.BoundingBoxCount}}</p>
    {{if .TextFileName}}<p><a href="/outputs/{{.TextFileName}}" download>Download text</a></p>{{end}}
    {{if .ImageFileName}}<p><a href="/outputs/{{.ImageFileName}}" download>Download annotated image</a></p>{{end}}
  </div>
</div>
{{end}}
</body>
</html>`
