package ocragent

// OcrRequest is created per UI/API call and discarded after the response.
// The image may arrive as raw bytes (multipart upload), base64 (JSON body)
// or a URL to fetch.
type OcrRequest struct {
	ImgUrl            string        `json:"img_url,omitempty"`
	ImgBase64         string        `json:"image_base64,omitempty"`
	ImgBytes          []byte        `json:"-"`
	Task              TaskType      `json:"task"`
	CustomPrompt      string        `json:"custom_prompt,omitempty"`
	ResolutionMode    string        `json:"resolution_mode,omitempty"`
	Preprocessor      string        `json:"preprocessor,omitempty"`
	SaveVisualization bool          `json:"save_visualization,omitempty"`
	EngineType        OcrEngineType `json:"engine"`
	RequestID         string        `json:"-"`
}

// BoundingBox is one grounded text region. Coordinates are normalized to
// [0,1] as x1,y1,x2,y2.
type BoundingBox struct {
	Text string     `json:"text"`
	Box  [4]float64 `json:"bbox"`
}

// OcrResult is what an engine hands back and what the API serializes.
type OcrResult struct {
	Text              string        `json:"text"`
	RawText           string        `json:"raw_text"`
	BoundingBoxes     []BoundingBox `json:"bounding_boxes"`
	BoundingBoxCount  int           `json:"bounding_box_count"`
	InferenceTime     float64       `json:"inference_time"`
	TotalTime         float64       `json:"total_time"`
	NumTokens         int           `json:"num_tokens"`
	Task              string        `json:"task"`
	ResolutionMode    string        `json:"resolution_mode"`
	TextFile          string        `json:"text_file,omitempty"`
	VisualizationFile string        `json:"visualization_file,omitempty"`
	Status            string        `json:"status"`
	RequestID         string        `json:"request_id"`
}

func newOcrResult(requestID string) OcrResult {
	return OcrResult{
		Status:    "processing",
		RequestID: requestID,
	}
}
