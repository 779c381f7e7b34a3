package ocragent

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/rs/zerolog/log"
)

// The machine-readable contract of the API daemon. Kept by hand and validated
// at startup so a typo fails fast instead of serving a broken document.
const openAPISpec = `{
  "openapi": "3.0.3",
  "info": {
    "title": "ocr-agent API",
    "description": "OCR service backed by the DeepSeek-OCR model",
    "version": "1.0.0"
  },
  "paths": {
    "/health": {
      "get": {
        "summary": "Health check",
        "responses": {
          "200": {
            "description": "Service health and model runtime state",
            "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Health"}}}
          }
        }
      }
    },
    "/api/v1/tasks": {
      "get": {
        "summary": "List supported OCR task types",
        "responses": {"200": {"description": "Task list", "content": {"application/json": {"schema": {"type": "object"}}}}}
      }
    },
    "/api/v1/resolutions": {
      "get": {
        "summary": "List supported resolution modes",
        "responses": {"200": {"description": "Resolution list", "content": {"application/json": {"schema": {"type": "object"}}}}}
      }
    },
    "/api/v1/ocr": {
      "post": {
        "summary": "Run OCR on an uploaded image",
        "requestBody": {
          "required": true,
          "content": {
            "multipart/form-data": {
              "schema": {
                "type": "object",
                "required": ["image"],
                "properties": {
                  "image": {"type": "string", "format": "binary"},
                  "task": {"type": "string", "enum": ["markdown", "ocr", "free", "figure", "describe", "custom"]},
                  "custom_prompt": {"type": "string"},
                  "resolution_mode": {"type": "string"},
                  "preprocessor": {"type": "string", "enum": ["identity", "enhance"]},
                  "save_visualization": {"type": "boolean"}
                }
              }
            }
          }
        },
        "responses": {
          "200": {"description": "Recognition result", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/OcrResponse"}}}},
          "400": {"description": "Invalid input", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/OcrResponse"}}}},
          "500": {"description": "Engine failure", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/OcrResponse"}}}}
        }
      }
    },
    "/api/v1/ocr/base64": {
      "post": {
        "summary": "Run OCR on a base64 encoded image",
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["image_base64"],
                "properties": {
                  "image_base64": {"type": "string"},
                  "img_url": {"type": "string"},
                  "task": {"type": "string"},
                  "custom_prompt": {"type": "string"},
                  "resolution_mode": {"type": "string"},
                  "preprocessor": {"type": "string"},
                  "save_visualization": {"type": "boolean"},
                  "engine": {"type": "string", "enum": ["deepseek", "mock"]}
                }
              }
            }
          }
        },
        "responses": {
          "200": {"description": "Recognition result", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/OcrResponse"}}}},
          "400": {"description": "Invalid input", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/OcrResponse"}}}},
          "500": {"description": "Engine failure", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/OcrResponse"}}}}
        }
      }
    }
  },
  "components": {
    "schemas": {
      "Health": {
        "type": "object",
        "properties": {
          "status": {"type": "string"},
          "model_loaded": {"type": "boolean"},
          "model_name": {"type": "string"},
          "runtime": {"type": "string"},
          "timestamp": {"type": "string"}
        }
      },
      "BoundingBox": {
        "type": "object",
        "properties": {
          "text": {"type": "string"},
          "bbox": {"type": "array", "items": {"type": "number"}, "minItems": 4, "maxItems": 4}
        }
      },
      "OcrResponse": {
        "type": "object",
        "properties": {
          "success": {"type": "boolean"},
          "message": {"type": "string"},
          "error": {"type": "string"},
          "data": {
            "type": "object",
            "properties": {
              "text": {"type": "string"},
              "raw_text": {"type": "string"},
              "bounding_boxes": {"type": "array", "items": {"$ref": "#/components/schemas/BoundingBox"}},
              "bounding_box_count": {"type": "integer"},
              "inference_time": {"type": "number"},
              "total_time": {"type": "number"},
              "num_tokens": {"type": "integer"},
              "task": {"type": "string"},
              "resolution_mode": {"type": "string"},
              "text_file": {"type": "string"},
              "visualization_file": {"type": "string"},
              "status": {"type": "string"},
              "request_id": {"type": "string"}
            }
          }
        }
      }
    }
  }
}`

// LoadOpenAPIDoc parses and validates the embedded spec.
func LoadOpenAPIDoc() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData([]byte(openAPISpec))
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, err
	}
	return doc, nil
}

// NewOpenAPIHandler serves the validated spec as /openapi.json.
func NewOpenAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(openAPISpec)); err != nil {
			log.Error().Err(err).Str("component", "OCR_DOCS").Msg("http write() failed")
		}
	}
}

const docsPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>ocr-agent API docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function() {
      SwaggerUIBundle({url: "/openapi.json", dom_id: "#swagger-ui"});
    };
  </script>
</body>
</html>`

// NewDocsHandler serves the interactive documentation page.
func NewDocsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write([]byte(docsPage)); err != nil {
			log.Error().Err(err).Str("component", "OCR_DOCS").Msg("http write() failed")
		}
	}
}
